package handlers

import (
	"net/http"

	"forms-service/internal/api/middleware"
	"forms-service/internal/models"
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultLatestLimit  = 10
	defaultPopularLimit = 5
)

type TemplateHandler struct {
	templates *services.TemplateService
}

func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// Latest godoc
// @Summary Latest public templates
// @Tags templates
// @Produce json
// @Param limit query int false "Number of templates" default(10)
// @Success 200 {object} response.Envelope{data=[]models.Template}
// @Router /templates/latest [get]
func (h *TemplateHandler) Latest(c *gin.Context) {
	templates, err := h.templates.Latest(c.Request.Context(), queryLimit(c, defaultLatestLimit))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, templates, len(templates))
}

// PopularByLikes godoc
// @Summary Most liked public templates
// @Tags templates
// @Produce json
// @Param limit query int false "Number of templates" default(5)
// @Success 200 {object} response.Envelope{data=[]models.Template}
// @Router /templates/popular/likes [get]
func (h *TemplateHandler) PopularByLikes(c *gin.Context) {
	templates, err := h.templates.PopularByLikes(c.Request.Context(), queryLimit(c, defaultPopularLimit))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, templates, len(templates))
}

// TagCounts godoc
// @Summary Number of templates per tag
// @Tags templates
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.TagCount}
// @Router /templates/tags [get]
func (h *TemplateHandler) TagCounts(c *gin.Context) {
	tags, err := h.templates.TagCounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, tags, len(tags))
}

// All godoc
// @Summary All templates (admin)
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort fields, '-' for descending"
// @Success 200 {object} response.Envelope{data=[]models.Template}
// @Failure 403 {object} models.ErrorResponse
// @Router /templates/templates [get]
func (h *TemplateHandler) All(c *gin.Context) {
	templates, _, err := h.templates.All(c.Request.Context(), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, templates, len(templates))
}

// DeleteMany godoc
// @Summary Delete several templates (admin)
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TemplateIDsRequest true "Template ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} models.ErrorResponse
// @Router /templates/templates [post]
func (h *TemplateHandler) DeleteMany(c *gin.Context) {
	var req models.TemplateIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.templates.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deletedCount": n})
}

// Get godoc
// @Summary Get a template
// @Description Restricted templates are visible to their creator, allowed users and admins
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope{data=models.Template}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, template)
}

// Update godoc
// @Summary Update a template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param request body models.UpdateTemplateRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=models.Template}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /templates/{id} [patch]
func (h *TemplateHandler) Update(c *gin.Context) {
	var req models.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	template, err := h.templates.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, template)
}

// Delete godoc
// @Summary Delete a template
// @Tags templates
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Mine godoc
// @Summary Templates created by the current user
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort fields, '-' for descending"
// @Success 200 {object} response.Envelope{data=[]models.Template}
// @Router /templates [get]
func (h *TemplateHandler) Mine(c *gin.Context) {
	templates, _, err := h.templates.Mine(c.Request.Context(), middleware.CurrentUser(c), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, templates, len(templates))
}

// Create godoc
// @Summary Create a template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTemplateRequest true "Template"
// @Success 201 {object} response.Envelope{data=models.Template}
// @Failure 400 {object} models.ErrorResponse
// @Router /templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req models.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	template, err := h.templates.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}
