package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"EnergyPulse/internal/domain/models"
	domrepo "EnergyPulse/internal/domain/repository"
	"EnergyPulse/internal/services/indicators"
	applogger "EnergyPulse/pkg/logger"
)

const (
	snapshotVolWindow   = 20
	snapshotRSIWindow   = 14
	snapshotLevelWindow = 20
	trendShort          = 5
	trendLong           = 10
	bandLevels          = 3
	anomalyZ            = 2.0
	sentimentCutoff     = 0.3
)

var changePeriods = []int{1, 7, 30}

// AnalysisUseCase builds market snapshots from stored history.
type AnalysisUseCase struct {
	store       domrepo.SeriesStore
	l           *applogger.Logger
	commodities []string
	now         func() time.Time
}

func NewAnalysisUseCase(store domrepo.SeriesStore, l *applogger.Logger, commodities []string) *AnalysisUseCase {
	return &AnalysisUseCase{store: store, l: l, commodities: commodities, now: time.Now}
}

// MarketSummary snapshots each commodity concurrently. Commodities that fail
// to load are reported in Errors rather than failing the summary.
func (u *AnalysisUseCase) MarketSummary(ctx context.Context, commodities []string, lookback int) (models.MarketSummary, error) {
	if len(commodities) == 0 {
		commodities = u.commodities
	}
	snaps := make([]*models.CommoditySnapshot, len(commodities))
	errs := make([]error, len(commodities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, c := range commodities {
		g.Go(func() error {
			s, err := u.store.GetLatestN(gctx, c, lookback)
			if err != nil {
				errs[i] = err
				return nil
			}
			snap, err := Snapshot(s)
			if err != nil {
				errs[i] = err
				return nil
			}
			snaps[i] = &snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.MarketSummary{}, err
	}

	out := models.MarketSummary{GeneratedAt: u.now().UTC(), Sentiment: models.SentimentNeutral}
	var score float64
	var scored int
	for i, c := range commodities {
		if errs[i] != nil {
			if out.Errors == nil {
				out.Errors = map[string]string{}
			}
			out.Errors[c] = errs[i].Error()
			u.l.Warn("market summary skipped commodity", applogger.String("commodity", c), applogger.Error(errs[i]))
			continue
		}
		out.Commodities = append(out.Commodities, *snaps[i])
		if snaps[i].Trend != models.TrendInsufficientData {
			score += snaps[i].Trend.Score()
			scored++
		}
	}
	if len(out.Commodities) == 0 && len(commodities) > 0 {
		return models.MarketSummary{}, errors.Join(errs...)
	}
	if scored > 0 {
		out.Sentiment = SentimentFromScore(score / float64(scored))
	}
	return out, nil
}

// SentimentFromScore maps an average trend score in [-1, 1] onto a label.
func SentimentFromScore(avg float64) models.Sentiment {
	switch {
	case avg > sentimentCutoff:
		return models.SentimentBullish
	case avg < -sentimentCutoff:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// Snapshot computes the per-commodity indicators. Indicators that need more
// history than available are left nil.
func Snapshot(s models.PriceSeries) (models.CommoditySnapshot, error) {
	last, ok := s.Last()
	if !ok {
		return models.CommoditySnapshot{}, fmt.Errorf("snapshot %s: empty series: %w", s.Name, models.ErrInsufficientData)
	}
	values := s.Values()
	snap := models.CommoditySnapshot{
		Commodity:    s.Name,
		AsOf:         last.Time,
		CurrentPrice: last.Price,
		Changes:      indicators.PriceChanges(values, changePeriods),
		Trend:        indicators.DetectTrend(values, trendShort, trendLong),
	}
	if v, err := indicators.Volatility(values, snapshotVolWindow); err == nil {
		snap.Volatility = &v
	}
	if v, err := indicators.RSI(values, snapshotRSIWindow); err == nil {
		snap.RSI = &v
	}
	if lo, hi, err := indicators.SupportResistance(values, snapshotLevelWindow); err == nil {
		snap.Support, snap.Resistance = &lo, &hi
	}
	if bands, _, err := indicators.PriceBands(values, bandLevels); err == nil {
		snap.Bands = bands
	}
	if anomalies, err := indicators.DetectAnomalies(s, anomalyZ); err == nil {
		snap.Anomalies = anomalies
	}
	return snap, nil
}

// Prices returns stored history between from and to inclusive.
func (u *AnalysisUseCase) Prices(ctx context.Context, commodity string, from, to time.Time) (models.PriceSeries, error) {
	return u.store.GetSeries(ctx, commodity, from, to)
}

// Commodities lists what the store can serve.
func (u *AnalysisUseCase) Commodities(ctx context.Context) ([]string, error) {
	return u.store.Commodities(ctx)
}
