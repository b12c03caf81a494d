package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-site-api/internal/schema"
)

// Store is the persistence the panel drives.
type Store interface {
	List(ctx context.Context) ([]schema.Record, error)
	Get(ctx context.Context, id string) (schema.Record, error)
	Create(ctx context.Context, payload map[string]interface{}) (schema.Record, error)
	Update(ctx context.Context, id string, payload map[string]interface{}) (schema.Record, error)
	Delete(ctx context.Context, id string) error
}

// Option is one choice of a reference field.
type Option struct {
	Value string
	Label string
}

// Lookup loads the choices for a reference field.
type Lookup func(ctx context.Context) ([]Option, error)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Panel is the list-plus-form admin screen for one entity.
type Panel struct {
	entity  *schema.Entity
	store   Store
	form    *Form
	lookups map[string]Lookup
	logger  *zap.Logger

	items   []schema.Record
	listErr error
}

// NewPanel builds a panel for e backed by store.
func NewPanel(e *schema.Entity, store Store, logger *zap.Logger) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		entity:  e,
		store:   store,
		form:    NewForm(e),
		lookups: map[string]Lookup{},
		logger:  logger.With(zap.String("entity", e.Key)),
		items:   []schema.Record{},
	}
}

// WithLookup registers the option source for a reference field.
func (p *Panel) WithLookup(field string, lookup Lookup) *Panel {
	p.lookups[field] = lookup
	return p
}

// Entity returns the panel's descriptor.
func (p *Panel) Entity() *schema.Entity { return p.entity }

// Form returns the panel's form.
func (p *Panel) Form() *Form { return p.form }

// Items returns the last fetched list.
func (p *Panel) Items() []schema.Record { return p.items }

// ListErr returns the error of the last failed refresh.
func (p *Panel) ListErr() error { return p.listErr }

// Refresh refetches the list. On failure the list is emptied and the error
// kept for display.
func (p *Panel) Refresh(ctx context.Context) error {
	items, err := p.store.List(ctx)
	if err != nil {
		p.logger.Warn("admin list failed", zap.Error(err))
		p.items = []schema.Record{}
		p.listErr = err
		return err
	}
	if items == nil {
		items = []schema.Record{}
	}
	p.items = items
	p.listErr = nil
	return nil
}

// Add opens the create form.
func (p *Panel) Add() error {
	return p.form.Add()
}

// Edit loads the record and opens the edit form.
func (p *Panel) Edit(ctx context.Context, id string) error {
	if p.form.State() != StateIdle {
		return fmt.Errorf("%w: edit while %s", ErrInvalidTransition, p.form.State())
	}
	rec, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return p.form.Edit(id, rec)
}

// Cancel closes the form.
func (p *Panel) Cancel() error {
	return p.form.Cancel()
}

// Submit sends the form and, on success, refetches the list. A failed write
// leaves the form open with its values and the error.
func (p *Panel) Submit(ctx context.Context) error {
	editing := p.form.State() == StateEditing
	targetID := p.form.TargetID()

	payload, err := p.form.Begin()
	if err != nil {
		return err
	}

	var writeErr error
	if editing {
		_, writeErr = p.store.Update(ctx, targetID, payload)
	} else {
		_, writeErr = p.store.Create(ctx, payload)
	}
	if err := p.form.Finish(writeErr); err != nil {
		return err
	}
	if writeErr != nil {
		p.logger.Warn("admin save failed", zap.String("id", targetID), zap.Error(writeErr))
		return writeErr
	}

	_ = p.Refresh(ctx)
	return nil
}

// DeletePrompt is the confirmation question for deletes.
func (p *Panel) DeletePrompt() string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", p.entity.Singular)
}

// Delete asks for confirmation, deletes and refetches. It reports whether
// the delete was confirmed.
func (p *Panel) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(p.DeletePrompt()) {
		return false, nil
	}
	if err := p.store.Delete(ctx, id); err != nil {
		p.logger.Warn("admin delete failed", zap.String("id", id), zap.Error(err))
		return true, err
	}
	_ = p.Refresh(ctx)
	return true, nil
}

// Options returns the choices for a reference field. Fields without a
// registered lookup have none.
func (p *Panel) Options(ctx context.Context, field string) ([]Option, error) {
	lookup, ok := p.lookups[field]
	if !ok {
		return nil, nil
	}
	return lookup(ctx)
}
