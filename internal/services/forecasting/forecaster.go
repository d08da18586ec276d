package forecasting

import (
	"fmt"
	"math"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/services/features"
)

// ForecasterConfig bounds the working window of the recursive forecast.
type ForecasterConfig struct {
	SeedWindow int
	MaxWindow  int
	KeepWindow int
}

func DefaultForecasterConfig() ForecasterConfig {
	return ForecasterConfig{SeedWindow: 60, MaxWindow: 100, KeepWindow: 80}
}

// Forecaster produces multi-step forecasts by feeding each prediction back
// into the feature pipeline.
type Forecaster struct {
	cfg      ForecasterConfig
	pipeline *features.Pipeline
}

func NewForecaster(cfg ForecasterConfig, pipeline *features.Pipeline) *Forecaster {
	def := DefaultForecasterConfig()
	if cfg.SeedWindow <= 0 {
		cfg.SeedWindow = def.SeedWindow
	}
	if cfg.MaxWindow <= 0 {
		cfg.MaxWindow = def.MaxWindow
	}
	if cfg.KeepWindow <= 0 || cfg.KeepWindow > cfg.MaxWindow {
		cfg.KeepWindow = min(def.KeepWindow, cfg.MaxWindow)
	}
	// Truncation keeps at least one full lookback plus the newest point.
	cfg.KeepWindow = max(cfg.KeepWindow, pipeline.Lookback()+1)
	cfg.MaxWindow = max(cfg.MaxWindow, cfg.KeepWindow)
	return &Forecaster{cfg: cfg, pipeline: pipeline}
}

// Step advances the forecast by one day. window is not modified; the
// returned window holds the prediction as its newest observation.
func (f *Forecaster) Step(window models.PriceSeries, a *ModelArtifact) (models.PriceSeries, models.ForecastPoint, error) {
	last, ok := window.Last()
	if !ok {
		return window, models.ForecastPoint{}, fmt.Errorf("step: empty window: %w", models.ErrInsufficientData)
	}
	next := features.NextTimestamp(last.Time)

	m := f.pipeline.Prepare(window.Append(models.PricePoint{Time: next, Price: math.NaN()}))
	_, row, ok := m.Last()
	if !ok {
		return window, models.ForecastPoint{}, fmt.Errorf("step %s: %w", next.Format("2006-01-02"), models.ErrNoUsableFeatures)
	}
	pred, err := a.PredictRow(m.Align(row, a.FeatureColumns))
	if err != nil {
		return window, models.ForecastPoint{}, fmt.Errorf("step %s: %w", next.Format("2006-01-02"), err)
	}
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return window, models.ForecastPoint{}, fmt.Errorf("step %s: non-finite prediction: %w", next.Format("2006-01-02"), models.ErrDegenerateComputation)
	}

	nextWindow := window.Append(models.PricePoint{Time: next, Price: pred})
	if nextWindow.Len() > f.cfg.MaxWindow {
		nextWindow = nextWindow.Tail(f.cfg.KeepWindow)
	}
	return nextWindow, models.ForecastPoint{Time: next, Forecast: pred}, nil
}

// Forecast runs horizon steps from the tail of series. When a step fails the
// points produced so far are returned with an error wrapping ErrPartialForecast.
func (f *Forecaster) Forecast(series models.PriceSeries, a *ModelArtifact, horizon int) (models.ForecastResult, error) {
	res := models.ForecastResult{Commodity: series.Name, Model: a.Kind, Horizon: horizon}
	if horizon < 1 {
		return res, fmt.Errorf("forecast %s: horizon %d must be positive", series.Name, horizon)
	}
	window := series.Tail(f.cfg.SeedWindow)
	for i := 0; i < horizon; i++ {
		nextWindow, point, err := f.Step(window, a)
		if err != nil {
			return res, fmt.Errorf("forecast %s: %w after %d of %d steps: %w",
				series.Name, models.ErrPartialForecast, i, horizon, err)
		}
		res.Points = append(res.Points, point)
		window = nextWindow
	}
	res.Complete = true
	return res, nil
}
