package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-site-api/internal/schema"
	"github.com/noah-isme/faculty-site-api/internal/service"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/response"
)

type entityService[T any] interface {
	Entity() *schema.Entity
	List(ctx context.Context, q service.ListQuery) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, payload map[string]interface{}) (*T, error)
	Update(ctx context.Context, id string, payload map[string]interface{}) (*T, error)
	Delete(ctx context.Context, id string) error
	ListRecords(ctx context.Context) ([]schema.Record, error)
}

type exportRenderer interface {
	Export(e *schema.Entity, records []schema.Record, format string) (*service.ExportFile, error)
}

// EntityHandler exposes admin CRUD for one content entity.
type EntityHandler[T any] struct {
	service entityService[T]
	exports exportRenderer
}

// NewEntityHandler constructs the handler. exports may be nil, which
// disables the export endpoint.
func NewEntityHandler[T any](svc entityService[T], exports exportRenderer) *EntityHandler[T] {
	return &EntityHandler[T]{service: svc, exports: exports}
}

// Register mounts the entity's routes under its key.
func (h *EntityHandler[T]) Register(rg *gin.RouterGroup) {
	group := rg.Group("/" + h.service.Entity().Key)
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/export", h.Export)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List records of a content entity
// @Tags Admin
// @Produce json
// @Param entity path string true "departments, programmes, staff, news or research-areas"
// @Param sort query string false "Comma separated columns, prefix - for descending"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/{entity} [get]
func (h *EntityHandler[T]) List(c *gin.Context) {
	q, err := listQueryFromRequest(c, h.service.Entity())
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items)
}

// Get godoc
// @Summary Get a record by id
// @Tags Admin
// @Produce json
// @Param entity path string true "Entity key"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/{entity}/{id} [get]
func (h *EntityHandler[T]) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create godoc
// @Summary Create a record
// @Tags Admin
// @Accept json
// @Produce json
// @Param entity path string true "Entity key"
// @Param payload body map[string]interface{} true "Field values"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admin/{entity} [post]
func (h *EntityHandler[T]) Create(c *gin.Context) {
	payload, ok := bindPayload(c, h.service.Entity())
	if !ok {
		return
	}
	item, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Partially update a record
// @Description PUT and PATCH both change only the supplied fields.
// @Tags Admin
// @Accept json
// @Produce json
// @Param entity path string true "Entity key"
// @Param id path string true "Record ID"
// @Param payload body map[string]interface{} true "Field values"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admin/{entity}/{id} [patch]
func (h *EntityHandler[T]) Update(c *gin.Context) {
	payload, ok := bindPayload(c, h.service.Entity())
	if !ok {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a record
// @Tags Admin
// @Param entity path string true "Entity key"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/{entity}/{id} [delete]
func (h *EntityHandler[T]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the listing as CSV or PDF
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param entity path string true "Entity key"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/{entity}/export [get]
func (h *EntityHandler[T]) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is not enabled"))
		return
	}
	records, err := h.service.ListRecords(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(h.service.Entity(), records, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

func bindPayload(c *gin.Context, e *schema.Entity) (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, fmt.Sprintf("invalid %s payload", e.Singular)))
		return nil, false
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return payload, true
}
