package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EnergyPulse/internal/handler/ws"
	"EnergyPulse/internal/scheduler"
	"EnergyPulse/internal/usecase"
	"EnergyPulse/pkg/config"
	xhttp "EnergyPulse/pkg/http"
	applogger "EnergyPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	http      *xhttp.Server
	scheduler *scheduler.Scheduler
	hub       *ws.Hub
	alerts    *usecase.AlertsUseCase
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	http *xhttp.Server,
	sched *scheduler.Scheduler,
	hub *ws.Hub,
	alerts *usecase.AlertsUseCase,
) *App {
	return &App{cfg: cfg, l: l, http: http, scheduler: sched, hub: hub, alerts: alerts}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the HTTP server and the scheduler and shuts both down
// once ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.http.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("commodities", a.cfg.Commodities),
	)

	if a.cfg.Alerts.Enabled {
		// Prime the alert history so summaries are populated before the first tick.
		go func() {
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if _, err := a.alerts.Generate(sweepCtx, nil, 0); err != nil && !errors.Is(err, context.Canceled) {
				a.l.Warn("initial alert sweep failed", applogger.Error(err))
			}
		}()
	}
	a.scheduler.Start()

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops inbound work first; infrastructure clients are closed by
// the DI cleanup afterwards.
func (a *App) shutdown() error {
	a.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.http.ShutdownTimeout())
	defer cancel()
	err := a.http.Stop(ctx)
	if err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	a.hub.Close()

	a.l.Info("shutdown complete")
	return err
}
