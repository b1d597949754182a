// Package jobs runs the periodic background work of the library service.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/robfig/cron/v3"
)

// DefaultOverdueSchedule runs the sweep every day at 06:00.
const DefaultOverdueSchedule = "0 0 6 * * *"

// OverdueLister is satisfied by data.BookInstanceModel.
type OverdueLister interface {
	GetOverdue(ctx context.Context, today data.Date) ([]*data.BookInstance, error)
}

// OverdueSweep reports every loan whose due date has passed.
type OverdueSweep struct {
	Instances OverdueLister
	Logger    *slog.Logger
	Now       func() time.Time
}

// Run logs one line per overdue loan and returns how many were found.
func (s *OverdueSweep) Run(ctx context.Context) (int, error) {
	today := data.DateOf(s.Now())

	overdue, err := s.Instances.GetOverdue(ctx, today)
	if err != nil {
		return 0, err
	}

	for _, bi := range overdue {
		attrs := []any{"instance", bi.ID.String(), "title", bi.BookTitle, "due_back", bi.DueBack.String()}
		if bi.BorrowerID != nil {
			attrs = append(attrs, "borrower_id", *bi.BorrowerID)
		}
		s.Logger.Warn("loan overdue", attrs...)
	}
	s.Logger.Info("overdue sweep finished", "today", today.String(), "overdue", len(overdue))
	return len(overdue), nil
}

// Scheduler owns the cron runner for background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler registers the overdue sweep on spec, a six-field cron
// expression with seconds.
func NewScheduler(logger *slog.Logger, spec string, sweep *OverdueSweep) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := sweep.Run(ctx); err != nil {
			logger.Error("overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("background jobs started", "entries", len(s.cron.Entries()))
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("background jobs stopped")
}
