package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"EnergyPulse/internal/domain/models"
	domrepo "EnergyPulse/internal/domain/repository"
	"EnergyPulse/internal/services/alerts"
	applogger "EnergyPulse/pkg/logger"
)

// AlertsUseCase loads recent history, runs the rule engine and fans the
// resulting batch out to the publisher and in-process sinks.
type AlertsUseCase struct {
	mu          sync.Mutex
	engine      *alerts.Engine
	store       domrepo.SeriesStore
	publisher   domrepo.AlertPublisher
	sinks       []domrepo.AlertSink
	metrics     domrepo.Metrics
	l           *applogger.Logger
	commodities []string
	lookback    int
}

func NewAlertsUseCase(
	engine *alerts.Engine,
	store domrepo.SeriesStore,
	publisher domrepo.AlertPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	commodities []string,
	lookback int,
) *AlertsUseCase {
	return &AlertsUseCase{
		engine:      engine,
		store:       store,
		publisher:   publisher,
		metrics:     metrics,
		l:           l,
		commodities: commodities,
		lookback:    lookback,
	}
}

// AddSink registers an in-process receiver for generated batches.
func (u *AlertsUseCase) AddSink(s domrepo.AlertSink) {
	u.mu.Lock()
	u.sinks = append(u.sinks, s)
	u.mu.Unlock()
}

// Generate evaluates the rules for commodities (the configured set when
// empty). Commodities that cannot be loaded are skipped unless all fail.
// Publishing failures are logged and do not fail the call.
func (u *AlertsUseCase) Generate(ctx context.Context, commodities []string, lookback int) ([]models.AlertRecord, error) {
	start := time.Now()
	if len(commodities) == 0 {
		commodities = u.commodities
	}
	if lookback <= 0 {
		lookback = u.lookback
	}
	if len(commodities) == 0 {
		return nil, fmt.Errorf("generate alerts: no commodities: %w", models.ErrInsufficientData)
	}

	seriesMap := make(map[string]models.PriceSeries, len(commodities))
	var loadErrs []error
	for _, c := range commodities {
		s, err := u.store.GetLatestN(ctx, c, lookback)
		if err != nil {
			loadErrs = append(loadErrs, err)
			u.l.Warn("alert sweep skipped commodity", applogger.String("commodity", c), applogger.Error(err))
			continue
		}
		seriesMap[c] = s
	}
	if len(seriesMap) == 0 {
		u.recordError("alerts_load")
		return nil, errors.Join(loadErrs...)
	}

	u.mu.Lock()
	batch := u.engine.GenerateAll(seriesMap)
	sinks := slices.Clone(u.sinks)
	u.mu.Unlock()

	if u.metrics != nil {
		for _, a := range batch {
			u.metrics.RecordAlert(a.Commodity, a.Type, a.Severity)
		}
		u.metrics.RecordLatency("alerts_generate", time.Since(start))
	}
	if len(batch) > 0 {
		if err := u.publisher.PublishAlerts(ctx, batch); err != nil {
			u.recordError("alerts_publish")
			u.l.Error("alert publish failed", applogger.Int("alerts", len(batch)), applogger.Error(err))
		}
		for _, s := range sinks {
			s.Broadcast(batch)
		}
	}
	u.l.Info("alert sweep done",
		applogger.Strings("commodities", commodities),
		applogger.Int("alerts", len(batch)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return batch, nil
}

// Summary counts alerts raised in the trailing window.
func (u *AlertsUseCase) Summary(hours int) models.AlertSummary {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.engine.Summary(hours)
}

// Recent returns up to limit alerts, newest first.
func (u *AlertsUseCase) Recent(limit int) []models.AlertRecord {
	u.mu.Lock()
	h := u.engine.History()
	u.mu.Unlock()
	slices.Reverse(h)
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return h
}

func (u *AlertsUseCase) Rules() models.AlertRules {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.engine.Rules()
}

// UpdateRules merges a partial rule update and returns the resulting set.
func (u *AlertsUseCase) UpdateRules(p models.AlertRulesPatch) models.AlertRules {
	u.mu.Lock()
	defer u.mu.Unlock()
	rules := u.engine.UpdateRules(p)
	u.l.Info("alert rules updated", applogger.Any("rules", rules))
	return rules
}

func (u *AlertsUseCase) recordError(kind string) {
	if u.metrics != nil {
		u.metrics.RecordError(kind)
	}
}
