package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-site-api/internal/service"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/response"
	"github.com/noah-isme/faculty-site-api/pkg/storage"
)

type mediaUploader interface {
	Upload(ctx context.Context, upload service.MediaUpload) (*storage.Object, error)
}

// MediaHandler accepts image uploads for staff photos and news images.
type MediaHandler struct {
	media mediaUploader
}

// NewMediaHandler constructs the handler.
func NewMediaHandler(media mediaUploader) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload godoc
// @Summary Upload an image
// @Description Stores the file and returns its public URL for profile_image or image fields.
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admin/media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "unable to read file"))
		return
	}
	defer file.Close()

	obj, err := h.media.Upload(c.Request.Context(), service.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, obj)
}
