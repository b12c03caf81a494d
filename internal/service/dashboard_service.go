package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/schema"
)

type rowCounter interface {
	Count(ctx context.Context, e *schema.Entity) (int, error)
}

// DashboardService summarises the content tables for the admin landing page.
type DashboardService struct {
	counter rowCounter
	logger  *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(counter rowCounter, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{counter: counter, logger: logger}
}

// Counts returns row counts per table. A failed count reports 0 and is logged.
func (s *DashboardService) Counts(ctx context.Context) models.ContentCounts {
	return models.ContentCounts{
		Departments: s.count(ctx, schema.Departments),
		Programmes:  s.count(ctx, schema.Programmes),
		Staff:       s.count(ctx, schema.Staff),
		News:        s.count(ctx, schema.News),
		Research:    s.count(ctx, schema.ResearchAreas),
	}
}

func (s *DashboardService) count(ctx context.Context, e *schema.Entity) int {
	total, err := s.counter.Count(ctx, e)
	if err != nil {
		s.logger.Warn("dashboard count failed", zap.String("table", e.Table), zap.Error(err))
		return 0
	}
	return total
}
