package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type expiredSessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// SessionSweeper periodically purges expired admin sessions.
type SessionSweeper struct {
	cron    *cron.Cron
	auth    expiredSessionSweeper
	logger  *zap.Logger
	timeout time.Duration
}

// NewSessionSweeper schedules the sweep using a standard cron spec or a
// descriptor such as "@every 1h".
func NewSessionSweeper(schedule string, auth expiredSessionSweeper, logger *zap.Logger) (*SessionSweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionSweeper{
		cron:    cron.New(),
		auth:    auth,
		logger:  logger,
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, err
	}
	return s, nil
}

// Run performs one sweep.
func (s *SessionSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	purged, err := s.auth.SweepExpired(ctx)
	if err != nil {
		s.logger.Warn("session sweep failed", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", purged))
	}
}

// Start begins the schedule in the background.
func (s *SessionSweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	<-s.cron.Stop().Done()
}
