package handlers

import (
	"net/http"

	"forms-service/internal/api/middleware"
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Global godoc
// @Summary Search public templates and comments
// @Tags search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope{data=services.SearchResult}
// @Failure 400 {object} models.ErrorResponse
// @Router /search [get]
func (h *SearchHandler) Global(c *gin.Context) {
	result, err := h.search.Global(c.Request.Context(), c.Query("q"), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": response.StatusSuccess,
		"results": gin.H{
			"templates": len(result.Templates),
			"comments":  len(result.Comments),
		},
		"data": result,
	})
}

// Tags godoc
// @Summary Suggest up to three tags
// @Tags search
// @Produce json
// @Param q query string true "Tag fragment"
// @Success 200 {object} response.Envelope{data=[]string}
// @Failure 400 {object} models.ErrorResponse
// @Router /search/tags [get]
func (h *SearchHandler) Tags(c *gin.Context) {
	tags, err := h.search.Tags(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, tags, len(tags))
}

// Users godoc
// @Summary Search users by name or email
// @Tags search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope{data=[]models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /search/user [get]
func (h *SearchHandler) Users(c *gin.Context) {
	users, err := h.search.Users(c.Request.Context(), c.Query("q"), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, users, len(users))
}

// Templates godoc
// @Summary Search templates by title or tag
// @Description Admins also see restricted templates
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope{data=[]models.Template}
// @Failure 400 {object} models.ErrorResponse
// @Router /search/template [get]
func (h *SearchHandler) Templates(c *gin.Context) {
	templates, err := h.search.Templates(c.Request.Context(), middleware.CurrentUser(c), c.Query("q"), listOptions(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, templates, len(templates))
}

// Stats godoc
// @Summary Dashboard totals (admin)
// @Tags search
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.DashboardStats}
// @Failure 403 {object} models.ErrorResponse
// @Router /search/stats [get]
func (h *SearchHandler) Stats(c *gin.Context) {
	stats, err := h.search.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
