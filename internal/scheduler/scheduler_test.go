package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"EnergyPulse/internal/domain/models"
	applogger "EnergyPulse/pkg/logger"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Generate(ctx context.Context, commodities []string, lookback int) ([]models.AlertRecord, error) {
	s.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("run without deadline")
	}
	return nil, s.err
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(applogger.NewNop(), time.Second)
	if err := s.RegisterAlertSweep("every fifteen minutes", &countingSweeper{}); err == nil {
		t.Fatalf("expected spec error")
	}
}

func TestRunNow(t *testing.T) {
	s := New(applogger.NewNop(), time.Second)
	sw := &countingSweeper{}
	if err := s.RegisterAlertSweep("@every 1h", sw); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.RunNow("alert_sweep"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sw.calls.Load() != 1 {
		t.Fatalf("calls=%d", sw.calls.Load())
	}
	if err := s.RunNow("missing"); err == nil {
		t.Fatalf("expected unknown task error")
	}

	sw.err = errors.New("store down")
	if err := s.RunNow("alert_sweep"); err == nil {
		t.Fatalf("expected sweep error")
	}
}

func TestScheduledSweepRuns(t *testing.T) {
	s := New(applogger.NewNop(), time.Second)
	sw := &countingSweeper{}
	if err := s.RegisterAlertSweep("@every 1s", sw); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for sw.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep never ran")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
