package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"EnergyPulse/internal/domain/models"
	domrepo "EnergyPulse/internal/domain/repository"
	"EnergyPulse/internal/service/cache"
	"EnergyPulse/internal/services/forecasting"
	applogger "EnergyPulse/pkg/logger"
)

// ForecastOptions tunes caching around the forecasting engine.
type ForecastOptions struct {
	ArtifactTTL time.Duration
	ResponseTTL time.Duration
}

// ForecastUseCase trains (or reuses) a model per commodity and runs the
// recursive forecast on the latest history.
type ForecastUseCase struct {
	store      domrepo.SeriesStore
	trainer    *forecasting.Trainer
	forecaster *forecasting.Forecaster
	artifacts  *cache.TTLCache
	responses  cache.BytesCache
	metrics    domrepo.Metrics
	l          *applogger.Logger
	opts       ForecastOptions
	training   singleflight.Group
}

func NewForecastUseCase(
	store domrepo.SeriesStore,
	trainer *forecasting.Trainer,
	forecaster *forecasting.Forecaster,
	artifacts *cache.TTLCache,
	responses cache.BytesCache,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts ForecastOptions,
) *ForecastUseCase {
	return &ForecastUseCase{
		store:      store,
		trainer:    trainer,
		forecaster: forecaster,
		artifacts:  artifacts,
		responses:  responses,
		metrics:    metrics,
		l:          l,
		opts:       opts,
	}
}

// Forecast serves a forecast request, from the response cache when possible.
// A forecast that stops early is still returned, with Warning set.
func (u *ForecastUseCase) Forecast(ctx context.Context, req models.ForecastRequest) (models.ForecastResponse, error) {
	start := time.Now()
	kind, err := models.ParseModelKind(req.Model)
	if err != nil {
		return models.ForecastResponse{}, fmt.Errorf("forecast %s: %w", req.Commodity, err)
	}

	key := cache.Key("forecast", req.Commodity, string(kind),
		strconv.Itoa(req.Horizon),
		strconv.FormatFloat(req.Confidence, 'f', -1, 64),
		strconv.Itoa(req.Lookback))
	if resp, ok := u.cached(ctx, key); ok {
		return resp, nil
	}

	series, err := u.store.GetLatestN(ctx, req.Commodity, req.Lookback)
	if err != nil {
		u.recordError("forecast_load")
		return models.ForecastResponse{}, err
	}
	a, err := u.artifact(series, kind)
	if err != nil {
		u.recordError("train")
		return models.ForecastResponse{}, err
	}

	resp := models.ForecastResponse{}
	res, err := u.forecaster.Forecast(series, a, req.Horizon)
	if err != nil {
		if !errors.Is(err, models.ErrPartialForecast) || len(res.Points) == 0 {
			u.recordError("forecast")
			return models.ForecastResponse{}, err
		}
		resp.Warning = err.Error()
		u.l.Warn("forecast stopped early",
			applogger.String("commodity", req.Commodity),
			applogger.Int("steps", len(res.Points)),
			applogger.Int("horizon", req.Horizon),
			applogger.Error(err),
		)
	}

	resp.Forecast = forecasting.PredictionIntervals(res, req.Confidence)
	if summary, err := forecasting.Summarize(resp.Forecast, a); err == nil {
		resp.Summary = &summary
	}
	if u.metrics != nil {
		u.metrics.RecordForecast(kind, len(res.Points), res.Complete)
		u.metrics.RecordLatency("forecast", time.Since(start))
	}
	if res.Complete {
		u.saveResponse(ctx, key, resp)
	}
	return resp, nil
}

// Backtest trains on all but the last holdout observations, forecasts the
// holdout period and scores it against what actually happened.
func (u *ForecastUseCase) Backtest(ctx context.Context, req models.BacktestRequest) (models.BacktestResult, error) {
	kind, err := models.ParseModelKind(req.Model)
	if err != nil {
		return models.BacktestResult{}, fmt.Errorf("backtest %s: %w", req.Commodity, err)
	}
	series, err := u.store.GetLatestN(ctx, req.Commodity, req.Lookback+req.Holdout)
	if err != nil {
		return models.BacktestResult{}, err
	}
	if series.Len() <= req.Holdout {
		return models.BacktestResult{}, fmt.Errorf("backtest %s: %d observations for holdout %d: %w",
			req.Commodity, series.Len(), req.Holdout, models.ErrInsufficientData)
	}
	cut := series.Len() - req.Holdout
	history := models.PriceSeries{Name: series.Name, Points: series.Points[:cut]}
	actual := models.PriceSeries{Name: series.Name, Points: series.Points[cut:]}

	a, err := u.trainer.Train(history, kind)
	if err != nil {
		return models.BacktestResult{}, err
	}
	last := history.Points[len(history.Points)-1].Time
	horizon := int(actual.Points[len(actual.Points)-1].Time.Sub(last).Hours()/24 + 0.5)
	res, err := u.forecaster.Forecast(history, a, horizon)
	if err != nil && (!errors.Is(err, models.ErrPartialForecast) || len(res.Points) == 0) {
		return models.BacktestResult{}, err
	}
	acc, err := forecasting.EvaluateAccuracy(actual, res)
	if err != nil {
		return models.BacktestResult{}, err
	}
	return models.BacktestResult{
		Commodity: req.Commodity,
		Model:     kind,
		Holdout:   req.Holdout,
		Accuracy:  acc,
		Forecast:  res,
	}, nil
}

// artifact returns a trained model for the series. Artifacts are keyed by the
// newest observation so fresh data forces a retrain; concurrent requests for
// the same key share one training run.
func (u *ForecastUseCase) artifact(series models.PriceSeries, kind models.ModelKind) (*forecasting.ModelArtifact, error) {
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("train %s: empty series: %w", series.Name, models.ErrInsufficientData)
	}
	key := cache.Key("model", series.Name, string(kind),
		strconv.Itoa(series.Len()), last.Time.Format(time.DateOnly))
	if v, ok := u.artifacts.Get(key); ok {
		return v.(*forecasting.ModelArtifact), nil
	}

	v, err, _ := u.training.Do(key, func() (interface{}, error) {
		start := time.Now()
		a, err := u.trainer.Train(series, kind)
		if err != nil {
			return nil, err
		}
		u.artifacts.Set(key, a, u.opts.ArtifactTTL)
		u.l.Info("model trained",
			applogger.String("commodity", series.Name),
			applogger.String("model", string(kind)),
			applogger.Int("observations", a.Observations),
			applogger.Float64("test_rmse", a.TestMetrics.RMSE),
			applogger.Float64("test_r2", a.TestMetrics.R2),
			applogger.Duration("duration_ms", time.Since(start)),
		)
		if u.metrics != nil {
			u.metrics.RecordTraining(series.Name, kind, a.TestMetrics)
			u.metrics.RecordLatency("train", time.Since(start))
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*forecasting.ModelArtifact), nil
}

func (u *ForecastUseCase) cached(ctx context.Context, key string) (models.ForecastResponse, bool) {
	if u.responses == nil {
		return models.ForecastResponse{}, false
	}
	b, ok, err := u.responses.GetBytes(ctx, key)
	if err != nil {
		u.l.Warn("forecast cache read failed", applogger.String("key", key), applogger.Error(err))
		return models.ForecastResponse{}, false
	}
	if !ok {
		return models.ForecastResponse{}, false
	}
	var resp models.ForecastResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return models.ForecastResponse{}, false
	}
	resp.Cached = true
	return resp, true
}

func (u *ForecastUseCase) saveResponse(ctx context.Context, key string, resp models.ForecastResponse) {
	if u.responses == nil || u.opts.ResponseTTL <= 0 {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := u.responses.SetBytes(ctx, key, b, u.opts.ResponseTTL); err != nil {
		u.l.Warn("forecast cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (u *ForecastUseCase) recordError(kind string) {
	if u.metrics != nil {
		u.metrics.RecordError(kind)
	}
}
