package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/repository"
	"github.com/noah-isme/faculty-site-api/internal/schema"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

type contentGateway interface {
	List(ctx context.Context, e *schema.Entity, opts repository.ListOptions, dest interface{}) error
	Get(ctx context.Context, e *schema.Entity, id string, dest interface{}) error
	Count(ctx context.Context, e *schema.Entity) (int, error)
	Exists(ctx context.Context, e *schema.Entity, id string) (bool, error)
	Insert(ctx context.Context, e *schema.Entity, values map[string]interface{}) (string, error)
	Update(ctx context.Context, e *schema.Entity, id string, values map[string]interface{}) error
	Delete(ctx context.Context, e *schema.Entity, id string) error
}

type mutationRecorder interface {
	RecordMutation(entity, op string)
}

// Accepted timestamp layouts, most specific first. Layouts without a zone
// are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ListQuery narrows a listing. Zero value lists everything in the entity's
// default order.
type ListQuery struct {
	OrderBy []schema.Order
	Filter  map[string]interface{}
	Limit   int
}

// EntityService implements create, read, update and delete for one content
// entity, driven by its schema descriptor.
type EntityService[T any] struct {
	entity    *schema.Entity
	gateway   contentGateway
	validator *validator.Validate
	logger    *zap.Logger
	metrics   mutationRecorder
	now       func() time.Time
}

// NewEntityService constructs the service for entity e. T must be the model
// whose db tags match e's columns.
func NewEntityService[T any](e *schema.Entity, gateway contentGateway, validate *validator.Validate, logger *zap.Logger, metrics mutationRecorder) *EntityService[T] {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityService[T]{
		entity:    e,
		gateway:   gateway,
		validator: validate,
		logger:    logger.With(zap.String("entity", e.Key)),
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Entity returns the descriptor served by this service.
func (s *EntityService[T]) Entity() *schema.Entity {
	return s.entity
}

// List returns records ordered by q.OrderBy or the default order. Entities
// with a department reference always embed the department name.
func (s *EntityService[T]) List(ctx context.Context, q ListQuery) ([]T, error) {
	_, embed := s.entity.Reference()
	var items []T
	if err := s.gateway.List(ctx, s.entity, repository.ListOptions{
		OrderBy:        q.OrderBy,
		Filter:         q.Filter,
		Limit:          q.Limit,
		EmbedReference: embed,
	}, &items); err != nil {
		if errors.Is(err, repository.ErrUnknownColumn) {
			return nil, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "invalid list query")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to list %s", s.entity.Table))
	}
	if items == nil {
		items = []T{}
	}
	for i := range items {
		resolveJoins(&items[i])
	}
	return items, nil
}

// Get returns a record by id.
func (s *EntityService[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := s.gateway.Get(ctx, s.entity, id, &item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", s.entity.Singular))
	}
	resolveJoins(&item)
	return &item, nil
}

// Count returns the number of records.
func (s *EntityService[T]) Count(ctx context.Context) (int, error) {
	total, err := s.gateway.Count(ctx, s.entity)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to count %s", s.entity.Table))
	}
	return total, nil
}

// Create validates payload, inserts it and returns the stored record.
func (s *EntityService[T]) Create(ctx context.Context, payload map[string]interface{}) (*T, error) {
	values, err := s.normalize(ctx, payload, true)
	if err != nil {
		return nil, err
	}
	id, err := s.gateway.Insert(ctx, s.entity, values)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to create %s", s.entity.Singular))
	}
	s.recordMutation("create")
	s.logger.Info("content created", zap.String("id", id))
	return s.Get(ctx, id)
}

// Update applies a partial update; only keys present in payload change.
func (s *EntityService[T]) Update(ctx context.Context, id string, payload map[string]interface{}) (*T, error) {
	values, err := s.normalize(ctx, payload, false)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.Update(ctx, s.entity, id, values); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to update %s", s.entity.Singular))
	}
	s.recordMutation("update")
	s.logger.Info("content updated", zap.String("id", id), zap.Int("fields", len(values)))
	return s.Get(ctx, id)
}

// Delete removes a record permanently.
func (s *EntityService[T]) Delete(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, s.entity, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.notFound()
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to delete %s", s.entity.Singular))
	}
	s.recordMutation("delete")
	s.logger.Info("content deleted", zap.String("id", id))
	return nil
}

// ListRecords lists every record in the default order as loosely typed rows.
func (s *EntityService[T]) ListRecords(ctx context.Context) ([]schema.Record, error) {
	items, err := s.List(ctx, ListQuery{})
	if err != nil {
		return nil, err
	}
	records := make([]schema.Record, 0, len(items))
	for i := range items {
		rec, err := schema.ToRecord(items[i])
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode record")
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *EntityService[T]) notFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, s.entity.Singular+" not found")
}

func (s *EntityService[T]) recordMutation(op string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(s.entity.Key, op)
	}
}

func resolveJoins(v interface{}) {
	if r, ok := v.(models.JoinResolver); ok {
		r.ResolveJoins()
	}
}

// normalize turns a client payload into column values. On create every
// field is filled (defaults for absent optional fields); on update only the
// supplied fields are returned.
func (s *EntityService[T]) normalize(ctx context.Context, payload map[string]interface{}, creating bool) (map[string]interface{}, error) {
	fields := map[string]string{}
	values := map[string]interface{}{}

	for key := range payload {
		switch key {
		case schema.ColumnID, schema.ColumnCreatedAt, schema.ColumnUpdatedAt, "departments":
			continue
		}
		if _, ok := s.entity.Field(key); !ok {
			fields[key] = "unknown field"
		}
	}

	for _, f := range s.entity.Fields {
		raw, present := payload[f.Name]
		if !present && !creating {
			continue
		}

		switch f.Kind {
		case schema.KindReference:
			ref, err := referenceValue(raw)
			if err != nil {
				fields[f.Name] = err.Error()
				continue
			}
			values[f.Name] = ref

		case schema.KindTimestamp:
			str, err := stringValue(raw)
			if err != nil {
				fields[f.Name] = err.Error()
				continue
			}
			if str == "" {
				if creating && f.DefaultNow {
					values[f.Name] = s.now()
					continue
				}
				if f.Required {
					fields[f.Name] = "is required"
				} else {
					values[f.Name] = nil
				}
				continue
			}
			ts, err := parseTimestamp(str)
			if err != nil {
				fields[f.Name] = err.Error()
				continue
			}
			values[f.Name] = ts

		case schema.KindSlug:
			str, err := stringValue(raw)
			if err != nil {
				fields[f.Name] = err.Error()
				continue
			}
			slug := schema.Slugify(str)
			if slug == "" && f.SlugOf != "" {
				if source, ok := payload[f.SlugOf].(string); ok {
					slug = schema.Slugify(source)
				}
			}
			if slug == "" && f.Required {
				fields[f.Name] = "is required"
				continue
			}
			values[f.Name] = slug

		default:
			str, err := stringValue(raw)
			if err != nil {
				fields[f.Name] = err.Error()
				continue
			}
			if f.Kind != schema.KindLongText {
				str = strings.TrimSpace(str)
			}
			if str == "" {
				if f.Required {
					fields[f.Name] = "is required"
					continue
				}
				values[f.Name] = ""
				continue
			}
			if msg := s.checkFormat(f, str); msg != "" {
				fields[f.Name] = msg
				continue
			}
			values[f.Name] = str
		}
	}

	if len(fields) == 0 {
		if err := s.checkReferences(ctx, values, fields); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, fmt.Sprintf("invalid %s payload", s.entity.Singular), fields)
	}
	return values, nil
}

func (s *EntityService[T]) checkFormat(f schema.Field, value string) string {
	var tag, msg string
	switch f.Kind {
	case schema.KindEnum:
		tag = "oneof=" + strings.Join(f.Options, " ")
		msg = "must be one of " + strings.Join(f.Options, ", ")
	case schema.KindURL:
		tag, msg = "url", "must be a valid URL"
	case schema.KindEmail:
		tag, msg = "email", "must be a valid email address"
	default:
		return ""
	}
	if err := s.validator.Var(value, tag); err != nil {
		return msg
	}
	return ""
}

func (s *EntityService[T]) checkReferences(ctx context.Context, values map[string]interface{}, fields map[string]string) error {
	for _, f := range s.entity.Fields {
		if f.Kind != schema.KindReference {
			continue
		}
		id, ok := values[f.Name].(string)
		if !ok {
			continue
		}
		target, found := schema.ByTable(f.References)
		if !found {
			return appErrors.Wrap(fmt.Errorf("unknown reference table %s", f.References), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid schema")
		}
		exists, err := s.gateway.Exists(ctx, target, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check reference")
		}
		if !exists {
			fields[f.Name] = target.Singular + " does not exist"
		}
	}
	return nil
}

func stringValue(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("must be a string")
	}
}

func referenceValue(raw interface{}) (interface{}, error) {
	str, err := stringValue(raw)
	if err != nil {
		return nil, err
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, nil
	}
	return str, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("must be a timestamp such as 2024-03-01T09:00")
}
