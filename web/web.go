// Package web holds the server-rendered admin panel templates.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/noah-isme/faculty-site-api/internal/schema"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"cell":      Cell,
	"inputType": InputType,
	"isLong":    func(f schema.Field) bool { return f.Kind == schema.KindLongText },
	"isSelect":  func(f schema.Field) bool { return f.Kind == schema.KindEnum || f.Kind == schema.KindReference },
	"isRef":     func(f schema.Field) bool { return f.Kind == schema.KindReference },
}

// Parse loads the embedded templates.
func Parse() (*template.Template, error) {
	return template.New("admin").Funcs(Funcs).ParseFS(templateFiles, "templates/*.html")
}

// MustParse is Parse for start-up wiring and tests.
func MustParse() *template.Template {
	return template.Must(Parse())
}

// Cell renders one list column. Reference columns show the embedded
// department name.
func Cell(rec schema.Record, f schema.Field) string {
	if f.Kind == schema.KindReference {
		return rec.String("departments")
	}
	value := rec.String(f.Name)
	if f.Kind == schema.KindTimestamp && len(value) >= 16 {
		return strings.Replace(value[:16], "T", " ", 1)
	}
	return value
}

// InputType maps a field kind to an <input> type.
func InputType(f schema.Field) string {
	switch f.Kind {
	case schema.KindURL:
		return "url"
	case schema.KindEmail:
		return "email"
	case schema.KindTimestamp:
		return "datetime-local"
	default:
		return "text"
	}
}
