package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/google/uuid"
)

type fakeLister struct {
	gotToday data.Date
	result   []*data.BookInstance
	err      error
}

func (f *fakeLister) GetOverdue(_ context.Context, today data.Date) ([]*data.BookInstance, error) {
	f.gotToday = today
	return f.result, f.err
}

func TestOverdueSweepLogsEachLoan(t *testing.T) {
	due := data.NewDate(2024, time.March, 1)
	borrower := int64(3)
	lister := &fakeLister{result: []*data.BookInstance{
		{ID: uuid.New(), BookTitle: "Middlemarch", DueBack: &due, BorrowerID: &borrower, Status: data.StatusOnLoan},
		{ID: uuid.New(), BookTitle: "Beloved", DueBack: &due, Status: data.StatusOnLoan},
	}}

	var buf bytes.Buffer
	sweep := &OverdueSweep{
		Instances: lister,
		Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
		Now:       func() time.Time { return time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC) },
	}

	n, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("Run = %d, want 2", n)
	}
	if lister.gotToday.String() != "2024-03-05" {
		t.Fatalf("queried with today = %s", lister.gotToday)
	}

	out := buf.String()
	if strings.Count(out, "loan overdue") != 2 {
		t.Fatalf("expected two overdue lines:\n%s", out)
	}
	if !strings.Contains(out, "borrower_id=3") || !strings.Contains(out, "overdue=2") {
		t.Fatalf("missing attributes:\n%s", out)
	}
}

func TestOverdueSweepPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	sweep := &OverdueSweep{
		Instances: &fakeLister{err: boom},
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Now:       time.Now,
	}
	if _, err := sweep.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if _, err := NewScheduler(logger, "every day please", &OverdueSweep{}); err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}

	s, err := NewScheduler(logger, DefaultOverdueSchedule, &OverdueSweep{})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	s.Stop()
}
