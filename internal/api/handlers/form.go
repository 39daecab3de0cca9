package handlers

import (
	"forms-service/internal/api/middleware"
	"forms-service/internal/models"
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	forms *services.FormService
}

func NewFormHandler(forms *services.FormService) *FormHandler {
	return &FormHandler{forms: forms}
}

// TemplateForForm godoc
// @Summary Template to fill in
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope{data=models.Template}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /forms/formTemplate/{id} [get]
func (h *FormHandler) TemplateForForm(c *gin.Context) {
	template, err := h.forms.TemplateForForm(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, template)
}

// ByTemplate godoc
// @Summary Submissions of a template
// @Description Only the template creator or an admin may list submissions
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 200 {object} response.Envelope{data=[]models.FormSubmission}
// @Failure 403 {object} models.ErrorResponse
// @Router /forms/template/{templateId} [get]
func (h *FormHandler) ByTemplate(c *gin.Context) {
	forms, _, err := h.forms.ByTemplate(c.Request.Context(), middleware.CurrentUser(c), c.Param("templateId"), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, forms, len(forms))
}

// Get godoc
// @Summary Get a submission
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope{data=models.FormSubmission}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) Get(c *gin.Context) {
	form, err := h.forms.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// Submit godoc
// @Summary Submit a form against a template
// @Tags forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param request body models.SubmitFormRequest true "Answers"
// @Success 201 {object} response.Envelope{data=models.Form}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /forms/{id} [post]
func (h *FormHandler) Submit(c *gin.Context) {
	var req models.SubmitFormRequest
	if !bindJSON(c, &req) {
		return
	}
	form, err := h.forms.Submit(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, form)
}
