package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-site-api/internal/service"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/storage"
)

type fakeUploader struct {
	got  service.MediaUpload
	body []byte
	err  error
}

func (f *fakeUploader) Upload(ctx context.Context, upload service.MediaUpload) (*storage.Object, error) {
	f.got = upload
	f.body, _ = io.ReadAll(upload.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Object{Key: "media/2024/03/abc.png", URL: "/media/media/2024/03/abc.png", ContentType: upload.ContentType, Size: int64(len(f.body))}, nil
}

func multipartRequest(t *testing.T, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="portrait.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestMediaHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uploader := &fakeUploader{}
	h := NewMediaHandler(uploader)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, "image/png", []byte("png-bytes"))
	h.Upload(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"/media/media/2024/03/abc.png"`)
	assert.Equal(t, "portrait.png", uploader.got.Filename)
	assert.Equal(t, "image/png", uploader.got.ContentType)
	assert.Equal(t, int64(9), uploader.got.Size)
	assert.Equal(t, []byte("png-bytes"), uploader.body)
}

func TestMediaHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", nil)
	NewMediaHandler(&fakeUploader{}).Upload(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, "application/pdf", []byte("%PDF"))
	rejected := appErrors.WithFields(appErrors.ErrValidation, "unsupported media type", map[string]string{"file": "application/pdf is not allowed"})
	NewMediaHandler(&fakeUploader{err: rejected}).Upload(c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "application/pdf is not allowed")
}
