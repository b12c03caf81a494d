package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/storage"
)

var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// MediaConfig limits what can be uploaded.
type MediaConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

// MediaUpload describes an incoming file.
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaService stores images referenced by the profile_image and image
// fields and returns their public URLs.
type MediaService struct {
	store   storage.Store
	config  MediaConfig
	allowed map[string]struct{}
	logger  *zap.Logger
	now     func() time.Time
}

// NewMediaService constructs a MediaService over a storage backend.
func NewMediaService(store storage.Store, config MediaConfig, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(config.AllowedMIMEs))
	for _, mime := range config.AllowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(mime))] = struct{}{}
	}
	return &MediaService{store: store, config: config, allowed: allowed, logger: logger, now: time.Now}
}

// Upload validates and stores the file under media/yyyy/mm/<uuid><ext>.
func (s *MediaService) Upload(ctx context.Context, upload MediaUpload) (*storage.Object, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[contentType]; !ok {
			return nil, appErrors.WithFields(appErrors.ErrValidation, "unsupported media type", map[string]string{"file": contentType + " is not allowed"})
		}
	}
	if s.config.MaxFileSize > 0 && upload.Size > s.config.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.config.MaxFileSize))
	}

	ext := mimeExtensions[contentType]
	if ext == "" {
		ext = strings.ToLower(path.Ext(upload.Filename))
	}
	key := fmt.Sprintf("media/%s/%s%s", s.now().UTC().Format("2006/01"), uuid.NewString(), ext)

	body := upload.Body
	if s.config.MaxFileSize > 0 {
		body = io.LimitReader(body, s.config.MaxFileSize)
	}
	obj, err := s.store.Put(ctx, key, body, contentType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store media")
	}
	s.logger.Info("media uploaded", zap.String("key", obj.Key), zap.Int64("size", obj.Size))
	return &obj, nil
}
