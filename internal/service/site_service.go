package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/repository"
	"github.com/noah-isme/faculty-site-api/internal/schema"
)

// DefaultHomeNewsLimit is the number of news items shown on the home page.
const DefaultHomeNewsLimit = 3

// LevelAll selects every programme level.
const LevelAll = "all"

type listGateway interface {
	List(ctx context.Context, e *schema.Entity, opts repository.ListOptions, dest interface{}) error
}

// ProgrammeCatalog is the fetched programme listing. Filtering happens in
// memory so switching levels never hits the database.
type ProgrammeCatalog struct {
	Items []models.Programme `json:"items"`
}

// Filter returns the programmes at level; "" or "all" returns every item.
func (c ProgrammeCatalog) Filter(level string) []models.Programme {
	level = strings.TrimSpace(level)
	if level == "" || strings.EqualFold(level, LevelAll) {
		out := make([]models.Programme, len(c.Items))
		copy(out, c.Items)
		return out
	}
	out := make([]models.Programme, 0, len(c.Items))
	for _, p := range c.Items {
		if strings.EqualFold(string(p.Level), level) {
			out = append(out, p)
		}
	}
	return out
}

// SiteService serves the read-only public pages. Reads never fail: a backend
// error yields an empty list and a warning log.
type SiteService struct {
	gateway       listGateway
	logger        *zap.Logger
	homeNewsLimit int
}

// NewSiteService constructs the public read service.
func NewSiteService(gateway listGateway, logger *zap.Logger, homeNewsLimit int) *SiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if homeNewsLimit <= 0 {
		homeNewsLimit = DefaultHomeNewsLimit
	}
	return &SiteService{gateway: gateway, logger: logger, homeNewsLimit: homeNewsLimit}
}

// Home returns the most recent news items.
func (s *SiteService) Home(ctx context.Context) models.HomePage {
	var news []models.News
	if !s.fetch(ctx, schema.News, repository.ListOptions{Limit: s.homeNewsLimit}, &news) {
		news = nil
	}
	return models.HomePage{News: nonNil(news)}
}

// Departments lists departments by name.
func (s *SiteService) Departments(ctx context.Context) []models.Department {
	var out []models.Department
	if !s.fetch(ctx, schema.Departments, repository.ListOptions{}, &out) {
		return []models.Department{}
	}
	return nonNil(out)
}

// DepartmentBySlug returns the first department with slug, or false.
func (s *SiteService) DepartmentBySlug(ctx context.Context, slug string) (*models.Department, bool) {
	var out []models.Department
	ok := s.fetch(ctx, schema.Departments, repository.ListOptions{
		Filter: map[string]interface{}{"slug": schema.Slugify(slug)},
		Limit:  1,
	}, &out)
	if !ok || len(out) == 0 {
		return nil, false
	}
	return &out[0], true
}

// Programmes lists programmes by level then name, with department names.
func (s *SiteService) Programmes(ctx context.Context) ProgrammeCatalog {
	var out []models.Programme
	if !s.fetch(ctx, schema.Programmes, repository.ListOptions{
		OrderBy:        []schema.Order{schema.Asc("level"), schema.Asc("name")},
		EmbedReference: true,
	}, &out) {
		return ProgrammeCatalog{Items: []models.Programme{}}
	}
	for i := range out {
		out[i].ResolveJoins()
	}
	return ProgrammeCatalog{Items: nonNil(out)}
}

// Research lists research areas by title, with department names.
func (s *SiteService) Research(ctx context.Context) []models.ResearchArea {
	var out []models.ResearchArea
	if !s.fetch(ctx, schema.ResearchAreas, repository.ListOptions{EmbedReference: true}, &out) {
		return []models.ResearchArea{}
	}
	for i := range out {
		out[i].ResolveJoins()
	}
	return nonNil(out)
}

// News lists every article, newest first.
func (s *SiteService) News(ctx context.Context) []models.News {
	var out []models.News
	if !s.fetch(ctx, schema.News, repository.ListOptions{}, &out) {
		return []models.News{}
	}
	return nonNil(out)
}

func (s *SiteService) fetch(ctx context.Context, e *schema.Entity, opts repository.ListOptions, dest interface{}) bool {
	if err := s.gateway.List(ctx, e, opts, dest); err != nil {
		s.logger.Warn("public read failed", zap.String("table", e.Table), zap.Error(err))
		return false
	}
	return true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
