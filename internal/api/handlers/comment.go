package handlers

import (
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// ByTemplate godoc
// @Summary Comments on a template, newest first
// @Tags comments
// @Produce json
// @Param templateId path string true "Template ID"
// @Success 200 {object} response.Envelope{data=[]models.Comment}
// @Router /comments/{templateId} [get]
func (h *CommentHandler) ByTemplate(c *gin.Context) {
	comments, err := h.comments.ListByTemplate(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, comments, len(comments))
}
