package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/repository"
	"EnergyPulse/internal/service/cache"
	"EnergyPulse/internal/services/alerts"
	"EnergyPulse/internal/services/features"
	"EnergyPulse/internal/services/forecasting"
	applogger "EnergyPulse/pkg/logger"
)

var asOf = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

type fakeMetrics struct {
	mu        sync.Mutex
	alerts    int
	forecasts int
	trainings int
	errors    []string
}

func (m *fakeMetrics) RecordAlert(string, models.AlertType, models.Severity) {
	m.mu.Lock()
	m.alerts++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordForecast(models.ModelKind, int, bool) {
	m.mu.Lock()
	m.forecasts++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordTraining(string, models.ModelKind, models.ModelMetrics) {
	m.mu.Lock()
	m.trainings++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors = append(m.errors, kind)
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, time.Duration) {}

type recordingPublisher struct {
	batches [][]models.AlertRecord
	err     error
}

func (p *recordingPublisher) PublishAlerts(_ context.Context, a []models.AlertRecord) error {
	p.batches = append(p.batches, a)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingSink struct{ got []models.AlertRecord }

func (s *recordingSink) Broadcast(a []models.AlertRecord) { s.got = append(s.got, a...) }

func seededStore(t *testing.T, names ...string) *repository.MemorySeriesStore {
	t.Helper()
	store := repository.NewMemorySeriesStore()
	if err := store.SeedRandomWalk(names, 400, asOf, 7); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func seriesOf(name string, values []float64) models.PriceSeries {
	s := models.PriceSeries{Name: name}
	start := asOf.AddDate(0, 0, -len(values)+1)
	for i, v := range values {
		s.Points = append(s.Points, models.PricePoint{Time: start.AddDate(0, 0, i), Price: v})
	}
	return s
}

func newForecastUseCase(t *testing.T, m *fakeMetrics) *ForecastUseCase {
	t.Helper()
	p := features.NewPipeline(features.DefaultConfig())
	cfg := forecasting.DefaultTrainerConfig()
	cfg.Forest.Trees = 10
	cfg.Forest.MaxDepth = 5
	return NewForecastUseCase(
		seededStore(t, "WTI", "Brent"),
		forecasting.NewTrainer(cfg, p),
		forecasting.NewForecaster(forecasting.DefaultForecasterConfig(), p),
		cache.NewTTLCache(),
		cache.NewTTLCache(),
		m,
		applogger.NewNop(),
		ForecastOptions{ArtifactTTL: time.Hour, ResponseTTL: time.Minute},
	)
}

func TestForecastCachesResponseAndArtifact(t *testing.T) {
	m := &fakeMetrics{}
	uc := newForecastUseCase(t, m)
	req := models.ForecastRequest{Commodity: "WTI", Model: "linear", Horizon: 10, Confidence: 0.95, Lookback: 365}

	first, err := uc.Forecast(context.Background(), req)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if first.Cached {
		t.Fatalf("first response must not be cached")
	}
	if len(first.Forecast.Points) != 10 || !first.Forecast.Complete {
		t.Fatalf("got %d points complete=%v", len(first.Forecast.Points), first.Forecast.Complete)
	}
	if first.Summary == nil {
		t.Fatalf("summary missing")
	}
	for i, p := range first.Forecast.Points {
		if !(p.Lower <= p.Forecast && p.Forecast <= p.Upper) {
			t.Fatalf("point %d outside its interval: %+v", i, p)
		}
		want := asOf.AddDate(0, 0, i+1)
		if !p.Time.Equal(want) {
			t.Fatalf("point %d at %v, want %v", i, p.Time, want)
		}
	}

	second, err := uc.Forecast(context.Background(), req)
	if err != nil {
		t.Fatalf("second forecast: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second response should come from cache")
	}
	if second.Forecast.Points[9].Forecast != first.Forecast.Points[9].Forecast {
		t.Fatalf("cached forecast differs")
	}

	req.Horizon = 5
	if _, err := uc.Forecast(context.Background(), req); err != nil {
		t.Fatalf("third forecast: %v", err)
	}
	if m.trainings != 1 {
		t.Fatalf("trainings=%d, want 1", m.trainings)
	}
	if m.forecasts != 2 {
		t.Fatalf("forecasts=%d, want 2", m.forecasts)
	}
}

func TestForecastErrors(t *testing.T) {
	m := &fakeMetrics{}
	uc := newForecastUseCase(t, m)

	_, err := uc.Forecast(context.Background(), models.ForecastRequest{Commodity: "WTI", Model: "arima", Horizon: 5, Lookback: 365})
	if !errors.Is(err, models.ErrUnknownModel) {
		t.Fatalf("unknown model: got %v", err)
	}
	_, err = uc.Forecast(context.Background(), models.ForecastRequest{Commodity: "Copper", Model: "linear", Horizon: 5, Lookback: 365})
	if !errors.Is(err, models.ErrUnknownCommodity) {
		t.Fatalf("unknown commodity: got %v", err)
	}
	_, err = uc.Forecast(context.Background(), models.ForecastRequest{Commodity: "WTI", Model: "linear", Horizon: 5, Lookback: 20})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("short lookback: got %v", err)
	}
	if len(m.errors) != 2 {
		t.Fatalf("recorded errors %v", m.errors)
	}
}

func TestBacktestScoresHoldout(t *testing.T) {
	uc := newForecastUseCase(t, &fakeMetrics{})
	res, err := uc.Backtest(context.Background(), models.BacktestRequest{Commodity: "Brent", Model: "linear", Holdout: 20, Lookback: 300})
	if err != nil {
		t.Fatalf("backtest: %v", err)
	}
	if res.Accuracy.Points != 20 {
		t.Fatalf("aligned points %d, want 20", res.Accuracy.Points)
	}
	if res.Accuracy.RMSE < res.Accuracy.MAE {
		t.Fatalf("rmse %v below mae %v", res.Accuracy.RMSE, res.Accuracy.MAE)
	}
	if res.Accuracy.DirectionAccuracy < 0 || res.Accuracy.DirectionAccuracy > 100 {
		t.Fatalf("direction accuracy %v", res.Accuracy.DirectionAccuracy)
	}

	_, err = uc.Backtest(context.Background(), models.BacktestRequest{Commodity: "Brent", Model: "linear", Holdout: 400, Lookback: 30})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("oversized holdout: got %v", err)
	}
}

func spikeStore(t *testing.T) *repository.MemorySeriesStore {
	t.Helper()
	store := repository.NewMemorySeriesStore()
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100 + float64(i%3)*0.1
	}
	flat[59] = 112
	if err := store.Put(seriesOf("WTI", flat)); err != nil {
		t.Fatalf("put: %v", err)
	}
	return store
}

func TestGenerateAlertsPublishesAndBroadcasts(t *testing.T) {
	m := &fakeMetrics{}
	pub := &recordingPublisher{err: errors.New("broker down")}
	sink := &recordingSink{}
	engine := alerts.NewEngine(alerts.Config{}, alerts.WithClock(func() time.Time { return asOf }))
	uc := NewAlertsUseCase(engine, spikeStore(t), pub, m, applogger.NewNop(), []string{"WTI", "Copper"}, 60)
	uc.AddSink(sink)

	got, err := uc.Generate(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var spike bool
	for _, a := range got {
		if a.Type == models.AlertPriceChange && a.Severity == models.SeverityHigh && a.Commodity == "WTI" {
			spike = true
		}
		if a.ID == "" || !a.Timestamp.Equal(asOf) {
			t.Fatalf("alert not stamped: %+v", a)
		}
	}
	if !spike {
		t.Fatalf("no high price_change alert in %+v", got)
	}
	if len(pub.batches) != 1 || len(sink.got) != len(got) {
		t.Fatalf("publisher batches %d sink %d alerts %d", len(pub.batches), len(sink.got), len(got))
	}
	if m.alerts != len(got) {
		t.Fatalf("metric alerts %d, want %d", m.alerts, len(got))
	}
	if len(m.errors) != 1 || m.errors[0] != "alerts_publish" {
		t.Fatalf("errors %v", m.errors)
	}

	s := uc.Summary(24)
	if s.Total != len(got) || s.High < 1 {
		t.Fatalf("summary %+v", s)
	}
	recent := uc.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("recent %d", len(recent))
	}
}

func TestGenerateAlertsAllCommoditiesMissing(t *testing.T) {
	engine := alerts.NewEngine(alerts.Config{})
	uc := NewAlertsUseCase(engine, repository.NewMemorySeriesStore(), repository.NopAlertPublisher{}, nil, applogger.NewNop(), nil, 60)
	_, err := uc.Generate(context.Background(), []string{"WTI", "Brent"}, 60)
	if !errors.Is(err, models.ErrUnknownCommodity) {
		t.Fatalf("got %v", err)
	}
}

func TestUpdateRulesMerges(t *testing.T) {
	engine := alerts.NewEngine(alerts.Config{})
	uc := NewAlertsUseCase(engine, repository.NewMemorySeriesStore(), repository.NopAlertPublisher{}, nil, applogger.NewNop(), nil, 60)
	threshold := 2.5
	off := false
	rules := uc.UpdateRules(models.AlertRulesPatch{PriceChangeThreshold: &threshold, MovingAverageCross: &off})
	if rules.PriceChangeThreshold != 2.5 || rules.MovingAverageCross {
		t.Fatalf("rules %+v", rules)
	}
	if rules.RSIOverbought != 70 || !rules.BollingerBandBreach {
		t.Fatalf("untouched rules changed: %+v", rules)
	}
	if uc.Rules() != rules {
		t.Fatalf("Rules() does not reflect update")
	}
}

func TestMarketSummaryReportsErrorsAndSentiment(t *testing.T) {
	store := repository.NewMemorySeriesStore()
	up := make([]float64, 40)
	for i := range up {
		up[i] = 50 + float64(i)
	}
	for _, name := range []string{"WTI", "Brent"} {
		if err := store.Put(seriesOf(name, up)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	uc := NewAnalysisUseCase(store, applogger.NewNop(), []string{"WTI", "Brent"})

	sum, err := uc.MarketSummary(context.Background(), []string{"WTI", "Brent", "Copper"}, 120)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Commodities) != 2 {
		t.Fatalf("snapshots %d", len(sum.Commodities))
	}
	if _, ok := sum.Errors["Copper"]; !ok || len(sum.Errors) != 1 {
		t.Fatalf("errors %v", sum.Errors)
	}
	if sum.Sentiment != models.SentimentBullish {
		t.Fatalf("sentiment %s", sum.Sentiment)
	}
	snap := sum.Commodities[0]
	if snap.Commodity != "WTI" || snap.CurrentPrice != 89 || snap.Trend != models.TrendUp {
		t.Fatalf("snapshot %+v", snap)
	}
	if snap.RSI == nil || *snap.RSI != 100 {
		t.Fatalf("rsi %v", snap.RSI)
	}

	if _, err := uc.MarketSummary(context.Background(), []string{"Copper"}, 120); !errors.Is(err, models.ErrUnknownCommodity) {
		t.Fatalf("all missing: got %v", err)
	}
}

func TestSentimentFromScore(t *testing.T) {
	cases := []struct {
		avg  float64
		want models.Sentiment
	}{
		{1, models.SentimentBullish},
		{0.31, models.SentimentBullish},
		{0.3, models.SentimentNeutral},
		{0, models.SentimentNeutral},
		{-0.3, models.SentimentNeutral},
		{-0.5, models.SentimentBearish},
	}
	for _, c := range cases {
		if got := SentimentFromScore(c.avg); got != c.want {
			t.Fatalf("score %v: got %s want %s", c.avg, got, c.want)
		}
	}
}
