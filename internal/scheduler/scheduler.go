// Package scheduler runs the periodic alert sweep and housekeeping jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"EnergyPulse/internal/domain/models"
	applogger "EnergyPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AlertSweeper generates alerts for the configured commodities.
type AlertSweeper interface {
	Generate(ctx context.Context, commodities []string, lookback int) ([]models.AlertRecord, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	l       *applogger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]func(context.Context) error
}

// New creates a Scheduler. Each run gets its own context bounded by timeout;
// overlapping runs of the same job are skipped.
func New(l *applogger.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	cl := cronLogger{l: l}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		l:       l,
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		jobs:    map[string]func(context.Context) error{},
	}
}

// Register adds a named job on a standard cron spec or descriptor such as
// "@every 15m".
func (s *Scheduler) Register(name, spec string, fn func(context.Context) error) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cronLogger{l: s.l})).Then(cron.FuncJob(func() {
		s.run(name, fn)
	}))
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	s.mu.Lock()
	s.jobs[name] = fn
	s.mu.Unlock()
	return nil
}

// RegisterAlertSweep schedules a full alert sweep.
func (s *Scheduler) RegisterAlertSweep(spec string, sweeper AlertSweeper) error {
	return s.Register("alert_sweep", spec, func(ctx context.Context) error {
		_, err := sweeper.Generate(ctx, nil, 0)
		return err
	})
}

// RunNow executes a registered job immediately on the caller's goroutine.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return s.run(name, fn)
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels in-flight runs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

func (s *Scheduler) run(name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		s.l.Error("scheduled task failed", applogger.String("task", name), applogger.Error(err))
		return err
	}
	s.l.Debug("scheduled task done", applogger.String("task", name), applogger.Duration("duration_ms", time.Since(start)))
	return nil
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct{ l *applogger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, applogger.Any(key, kv[i+1]))
	}
	return fields
}
