// Package admin implements the entity editing workflow shared by every
// content table: a list that is refetched after each change, and a form
// that moves between idle, creating, editing and submitting.
package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/faculty-site-api/internal/schema"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
)

// State is a form lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateCreating   State = "creating"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

// InputTimeLayout matches <input type="datetime-local" step="1">. Seconds
// are kept so re-saving an untouched timestamp does not change it.
const InputTimeLayout = "2006-01-02T15:04:05"

// ErrInvalidTransition is returned when an action is not allowed in the
// form's current state.
var ErrInvalidTransition = errors.New("admin: invalid form transition")

// Form holds the field values being edited for one entity.
type Form struct {
	entity   *schema.Entity
	state    State
	previous State
	targetID string
	values   map[string]string
	err      error
	now      func() time.Time
}

// NewForm returns an idle form for e.
func NewForm(e *schema.Entity) *Form {
	return &Form{entity: e, state: StateIdle, values: map[string]string{}, now: func() time.Time { return time.Now().UTC() }}
}

func (f *Form) transition(from []State, to State) error {
	for _, s := range from {
		if f.state == s {
			f.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, f.state, to)
}

// Add opens a blank form. Enums default to their first option and
// timestamps that default to now are pre-filled.
func (f *Form) Add() error {
	if err := f.transition([]State{StateIdle}, StateCreating); err != nil {
		return err
	}
	f.targetID = ""
	f.err = nil
	f.values = make(map[string]string, len(f.entity.Fields))
	for _, field := range f.entity.Fields {
		switch {
		case field.Kind == schema.KindEnum && len(field.Options) > 0:
			f.values[field.Name] = field.Options[0]
		case field.Kind == schema.KindTimestamp && field.DefaultNow:
			f.values[field.Name] = f.now().UTC().Format(InputTimeLayout)
		default:
			f.values[field.Name] = ""
		}
	}
	return nil
}

// Edit opens the form pre-filled from rec. The id is kept as the update
// target and never becomes an editable value.
func (f *Form) Edit(id string, rec schema.Record) error {
	if id == "" {
		return fmt.Errorf("%w: edit requires an id", ErrInvalidTransition)
	}
	if err := f.transition([]State{StateIdle}, StateEditing); err != nil {
		return err
	}
	f.targetID = id
	f.err = nil
	f.values = make(map[string]string, len(f.entity.Fields))
	for _, field := range f.entity.Fields {
		value := rec.String(field.Name)
		if field.Kind == schema.KindTimestamp && value != "" {
			if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
				value = ts.UTC().Format(InputTimeLayout)
			}
		}
		f.values[field.Name] = value
	}
	return nil
}

// Set changes one field. Changing the value of the slug source re-derives
// the slug, and blanking the slug derives it from the source again.
func (f *Form) Set(name, value string) error {
	if f.state != StateCreating && f.state != StateEditing {
		return fmt.Errorf("%w: cannot edit fields while %s", ErrInvalidTransition, f.state)
	}
	field, ok := f.entity.Field(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	changed := f.values[name] != value
	f.values[name] = value

	for _, other := range f.entity.Fields {
		if changed && other.Kind == schema.KindSlug && other.SlugOf == name {
			f.values[other.Name] = schema.Slugify(value)
		}
	}
	if field.Kind == schema.KindSlug && field.SlugOf != "" && value == "" {
		f.values[name] = schema.Slugify(f.values[field.SlugOf])
	}
	return nil
}

// SetAll applies a submitted form in field order, ignoring keys that are
// not fields. A posted slug equal to the slug shown before the submit is
// the untouched input, so it does not override one re-derived from a
// renamed source.
func (f *Form) SetAll(values map[string]string) error {
	shown := make(map[string]string, len(f.values))
	for k, v := range f.values {
		shown[k] = v
	}
	for _, field := range f.entity.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		if field.Kind == schema.KindSlug && value == shown[field.Name] {
			continue
		}
		if err := f.Set(field.Name, value); err != nil {
			return err
		}
	}
	return nil
}

// Begin moves to submitting and returns the payload to send. Blank
// references become null.
func (f *Form) Begin() (map[string]interface{}, error) {
	previous := f.state
	if err := f.transition([]State{StateCreating, StateEditing}, StateSubmitting); err != nil {
		return nil, err
	}
	f.previous = previous
	f.err = nil

	payload := make(map[string]interface{}, len(f.values))
	for _, field := range f.entity.Fields {
		value := f.values[field.Name]
		if field.Kind == schema.KindReference && value == "" {
			payload[field.Name] = nil
			continue
		}
		payload[field.Name] = value
	}
	return payload, nil
}

// Finish ends a submission. Success returns to idle and clears the form;
// failure returns to the previous state keeping the values and the error.
func (f *Form) Finish(err error) error {
	if f.state != StateSubmitting {
		return fmt.Errorf("%w: finish while %s", ErrInvalidTransition, f.state)
	}
	if err != nil {
		f.state = f.previous
		f.err = err
		return nil
	}
	f.reset()
	return nil
}

// Cancel discards uncommitted edits.
func (f *Form) Cancel() error {
	if err := f.transition([]State{StateCreating, StateEditing}, StateIdle); err != nil {
		return err
	}
	f.reset()
	return nil
}

func (f *Form) reset() {
	f.state = StateIdle
	f.previous = ""
	f.targetID = ""
	f.values = map[string]string{}
	f.err = nil
}

// State returns the current lifecycle state.
func (f *Form) State() State { return f.state }

// Submitting reports which state a submission started from.
func (f *Form) Submitting() State { return f.previous }

// TargetID returns the id being edited, empty when creating.
func (f *Form) TargetID() string { return f.targetID }

// Entity returns the descriptor the form edits.
func (f *Form) Entity() *schema.Entity { return f.entity }

// Value returns the current value of a field.
func (f *Form) Value(name string) string { return f.values[name] }

// Values returns a copy of the field values.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Err returns the error of the last failed submission.
func (f *Form) Err() error { return f.err }

// FieldErrors returns per-field messages from the last failed submission.
func (f *Form) FieldErrors() map[string]string {
	if f.err == nil {
		return nil
	}
	return appErrors.FromError(f.err).Fields
}

// Heading is the title shown above the form.
func (f *Form) Heading() string {
	if f.state == StateEditing || (f.state == StateSubmitting && f.previous == StateEditing) {
		return "Edit " + f.entity.Title()
	}
	return "Add " + f.entity.Title()
}
