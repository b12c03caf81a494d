package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/faculty-site-api/internal/schema"
	appErrors "github.com/noah-isme/faculty-site-api/pkg/errors"
	"github.com/noah-isme/faculty-site-api/pkg/export"
)

// ExportFile is a rendered listing ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders entity listings as CSV or PDF.
type ExportService struct {
	renderers map[string]export.Renderer
}

// NewExportService registers the csv and pdf renderers.
func NewExportService() *ExportService {
	return &ExportService{renderers: map[string]export.Renderer{
		"csv": export.NewCSVExporter(),
		"pdf": export.NewPDFExporter(),
	}}
}

// Dataset projects records onto the entity's listed columns.
func Dataset(e *schema.Entity, records []schema.Record) export.Dataset {
	columns := []export.Column{}
	keys := []string{}
	for _, f := range e.ListedFields() {
		key := f.Name
		label := f.Label
		if f.Kind == schema.KindReference {
			key = "departments"
		}
		columns = append(columns, export.Column{Key: key, Label: label})
		keys = append(keys, key)
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(keys))
		for _, key := range keys {
			row[key] = rec.String(key)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: e.Plural, Columns: columns, Rows: rows}
}

// Export renders records in format ("csv" or "pdf").
func (s *ExportService) Export(e *schema.Entity, records []schema.Record, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("unsupported export format %q", format))
	}
	body, err := renderer.Render(Dataset(e, records))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", strings.ReplaceAll(e.Key, "-", "_"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
