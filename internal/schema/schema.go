// Package schema describes the content entities of the faculty site: their
// tables, editable fields, relationships and default ordering. Repositories,
// services and the admin panel are all driven by these descriptors.
package schema

import "strings"

// Kind classifies how a field is stored, validated and rendered.
type Kind string

const (
	KindText      Kind = "text"
	KindLongText  Kind = "longtext"
	KindSlug      Kind = "slug"
	KindEnum      Kind = "enum"
	KindReference Kind = "reference"
	KindURL       Kind = "url"
	KindEmail     Kind = "email"
	KindTimestamp Kind = "timestamp"
)

// Audit columns assigned by the gateway.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// Field is one editable column of an entity.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	// Options lists the allowed values of an enum field; the first is the
	// form default.
	Options []string
	// References is the table a reference field points at. Display is the
	// column of that table embedded in listings, exposed as EmbedAs.
	References string
	Display    string
	EmbedAs    string
	// SlugOf names the field a slug is derived from.
	SlugOf string
	// DefaultNow makes a timestamp default to the current time.
	DefaultNow bool
	// Listed marks columns shown in admin tables and exports.
	Listed bool
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Asc and Desc build ordering terms.
func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Entity describes a content table.
type Entity struct {
	// Key is the URL segment used by the admin routes.
	Key          string
	Table        string
	Singular     string
	Plural       string
	Fields       []Field
	DefaultOrder []Order
}

// Columns returns every selectable column in storage order.
func (e *Entity) Columns() []string {
	cols := make([]string, 0, len(e.Fields)+3)
	cols = append(cols, ColumnID)
	for _, f := range e.Fields {
		cols = append(cols, f.Name)
	}
	return append(cols, ColumnCreatedAt, ColumnUpdatedAt)
}

// HasColumn reports whether name is a column of the entity table.
func (e *Entity) HasColumn(name string) bool {
	switch name {
	case ColumnID, ColumnCreatedAt, ColumnUpdatedAt:
		return true
	}
	_, ok := e.Field(name)
	return ok
}

// Field looks up an editable field by name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Reference returns the entity's embeddable reference field, if any.
func (e *Entity) Reference() (Field, bool) {
	for _, f := range e.Fields {
		if f.Kind == KindReference {
			return f, true
		}
	}
	return Field{}, false
}

// ListedFields returns the fields shown in tables and exports.
func (e *Entity) ListedFields() []Field {
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Listed {
			out = append(out, f)
		}
	}
	return out
}

// Title returns the singular name with each word capitalised, as used in
// headings ("News Article").
func (e *Entity) Title() string {
	words := strings.Fields(e.Singular)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
