package admin

import (
	"context"

	"github.com/noah-isme/faculty-site-api/internal/schema"
	"github.com/noah-isme/faculty-site-api/internal/service"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

// ServiceStore adapts a typed entity service to the record-based Store.
type ServiceStore[T any] struct {
	svc *service.EntityService[T]
}

// NewServiceStore wraps svc.
func NewServiceStore[T any](svc *service.EntityService[T]) *ServiceStore[T] {
	return &ServiceStore[T]{svc: svc}
}

// List implements Store.
func (s *ServiceStore[T]) List(ctx context.Context) ([]schema.Record, error) {
	return s.svc.ListRecords(ctx)
}

// Get implements Store.
func (s *ServiceStore[T]) Get(ctx context.Context, id string) (schema.Record, error) {
	item, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRecord(item)
}

// Create implements Store.
func (s *ServiceStore[T]) Create(ctx context.Context, payload map[string]interface{}) (schema.Record, error) {
	item, err := s.svc.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return toRecord(item)
}

// Update implements Store.
func (s *ServiceStore[T]) Update(ctx context.Context, id string, payload map[string]interface{}) (schema.Record, error) {
	item, err := s.svc.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	return toRecord(item)
}

// Delete implements Store.
func (s *ServiceStore[T]) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

func toRecord(v interface{}) (schema.Record, error) {
	rec, err := schema.ToRecord(v)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode record")
	}
	return rec, nil
}

// DepartmentLookup lists departments by name as reference options.
func DepartmentLookup(store Store) Lookup {
	return func(ctx context.Context) ([]Option, error) {
		records, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		options := make([]Option, 0, len(records))
		for _, rec := range records {
			options = append(options, Option{Value: rec.ID(), Label: rec.String("name")})
		}
		return options, nil
	}
}
