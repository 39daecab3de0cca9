package handlers

import (
	"errors"
	"net/http"

	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploads *services.UploadService
}

func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// UploadImage godoc
// @Summary Upload an image
// @Description The image is shrunk to fit 200x200 and stored as JPEG
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image, at most 5MB"
// @Success 200 {object} map[string]string "status and url"
// @Failure 400 {object} models.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+1<<20)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, services.ErrImageTooLarge)
			return
		}
		response.Error(c, services.ErrNoImage)
		return
	}
	if file.Size > services.MaxImageSize {
		response.Error(c, services.ErrImageTooLarge)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, services.ErrNoImage)
		return
	}
	defer src.Close()

	url, err := h.uploads.UploadImage(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": response.StatusSuccess, "url": url})
}
