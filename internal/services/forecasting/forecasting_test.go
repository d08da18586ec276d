package forecasting

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/services/features"
)

var start = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func wave(n int) models.PriceSeries {
	s := models.PriceSeries{Name: "Brent"}
	for i := 0; i < n; i++ {
		price := 75 + 4*math.Sin(float64(i)/5) + 0.08*float64(i) + float64(i%3)*0.3
		s.Points = append(s.Points, models.PricePoint{Time: start.AddDate(0, 0, i), Price: price})
	}
	return s
}

func flat(n int) models.PriceSeries {
	s := models.PriceSeries{Name: "flat"}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, models.PricePoint{Time: start.AddDate(0, 0, i), Price: 3})
	}
	return s
}

func smallForest() TrainerConfig {
	cfg := DefaultTrainerConfig()
	cfg.Forest.Trees = 12
	return cfg
}

func newEngine(cfg TrainerConfig) (*Trainer, *Forecaster) {
	p := features.NewPipeline(features.DefaultConfig())
	return NewTrainer(cfg, p), NewForecaster(DefaultForecasterConfig(), p)
}

func TestTrainRequiresObservations(t *testing.T) {
	trainer, _ := newEngine(smallForest())
	_, err := trainer.Train(wave(29), models.ModelLinear)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestTrainNoUsableFeatures(t *testing.T) {
	trainer, _ := newEngine(smallForest())
	_, err := trainer.Train(flat(60), models.ModelLinear)
	if !errors.Is(err, models.ErrNoUsableFeatures) {
		t.Fatalf("expected no usable features, got %v", err)
	}
}

func TestTrainUnknownModel(t *testing.T) {
	trainer, _ := newEngine(smallForest())
	_, err := trainer.Train(wave(60), models.ModelKind("svm"))
	if !errors.Is(err, models.ErrUnknownModel) {
		t.Fatalf("expected unknown model, got %v", err)
	}
}

func TestTrainArtifact(t *testing.T) {
	trainer, _ := newEngine(smallForest())
	for _, kind := range []models.ModelKind{models.ModelLinear, models.ModelRandomForest} {
		a, err := trainer.Train(wave(120), kind)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}
		if a.Kind != kind || len(a.FeatureColumns) != 27 || a.Observations != 120 {
			t.Fatalf("%s: unexpected artifact %+v", kind, a)
		}
		for _, v := range []float64{a.TrainMetrics.MAE, a.TrainMetrics.RMSE, a.TestMetrics.MAE, a.TestMetrics.RMSE} {
			if math.IsNaN(v) || v < 0 {
				t.Fatalf("%s: bad metric %v", kind, v)
			}
		}
		if a.TrainMetrics.RMSE < a.TrainMetrics.MAE {
			t.Fatalf("%s: rmse %v below mae %v", kind, a.TrainMetrics.RMSE, a.TrainMetrics.MAE)
		}
	}
}

func TestForestFitDeterministic(t *testing.T) {
	trainer, forecaster := newEngine(smallForest())
	a1, err := trainer.Train(wave(100), models.ModelRandomForest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := trainer.Train(wave(100), models.ModelRandomForest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r1, err1 := forecaster.Forecast(wave(100), a1, 5)
	r2, err2 := forecaster.Forecast(wave(100), a2, 5)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if !reflect.DeepEqual(r1.Forecasts(), r2.Forecasts()) {
		t.Fatalf("forests with the same seed disagree: %v vs %v", r1.Forecasts(), r2.Forecasts())
	}
}

func TestForecastDeterministicAndOrdered(t *testing.T) {
	trainer, forecaster := newEngine(smallForest())
	series := wave(150)
	a, err := trainer.Train(series, models.ModelLinear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := forecaster.Forecast(series, a, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := forecaster.Forecast(series, a, 30)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical forecasts")
	}
	if len(first.Points) != 30 || !first.Complete {
		t.Fatalf("expected a complete 30-step forecast, got %d", len(first.Points))
	}
	last, _ := series.Last()
	for i, p := range first.Points {
		want := last.Time.AddDate(0, 0, i+1)
		if !p.Time.Equal(want) {
			t.Fatalf("point %d at %v, want %v", i, p.Time, want)
		}
	}
}

func TestForecastPartial(t *testing.T) {
	trainer, forecaster := newEngine(smallForest())
	a, err := trainer.Train(wave(120), models.ModelLinear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := forecaster.Forecast(wave(120).Tail(10), a, 5)
	if !errors.Is(err, models.ErrPartialForecast) || !errors.Is(err, models.ErrNoUsableFeatures) {
		t.Fatalf("expected partial forecast, got %v", err)
	}
	if res.Complete || len(res.Points) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestStepIsPure(t *testing.T) {
	trainer, forecaster := newEngine(smallForest())
	series := wave(100)
	a, err := trainer.Train(series, models.ModelLinear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := series.Tail(100)
	next, point, err := forecaster.Step(series, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(series, before) {
		t.Fatalf("step modified its input window")
	}
	if next.Len() != 80 {
		t.Fatalf("window of 101 should be cut to 80, got %d", next.Len())
	}
	newest, _ := next.Last()
	if newest.Price != point.Forecast || !newest.Time.Equal(point.Time) {
		t.Fatalf("prediction not appended: %+v vs %+v", newest, point)
	}
}

func TestPredictionIntervals(t *testing.T) {
	res := models.ForecastResult{Points: []models.ForecastPoint{
		{Time: start, Forecast: 10},
		{Time: start.AddDate(0, 0, 1), Forecast: 12},
		{Time: start.AddDate(0, 0, 2), Forecast: 14},
	}}
	out := PredictionIntervals(res, 0.95)
	// sample std of {10, 12, 14} is 2; z(0.975) is about 1.96.
	margin := out.Points[0].Upper - out.Points[0].Forecast
	if math.Abs(margin-2*1.959964) > 1e-4 {
		t.Fatalf("margin = %v", margin)
	}
	for i, p := range out.Points {
		if math.Abs((p.Upper-p.Forecast)-margin) > 1e-12 || math.Abs((p.Forecast-p.Lower)-margin) > 1e-12 {
			t.Fatalf("point %d has a non-uniform band", i)
		}
	}
	if res.Points[0].Upper != 0 {
		t.Fatalf("input result was modified")
	}
}

func TestLinearRegressorRecoversPlane(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		x0, x1 := float64(i), float64((i*i)%7)
		X = append(X, []float64{x0, x1, 5})
		y = append(y, 3+2*x0-x1)
	}
	r := NewLinearRegressor()
	if err := r.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := r.Score(X, y)
	if err != nil || math.Abs(score-1) > 1e-9 {
		t.Fatalf("score = %v, err = %v", score, err)
	}
	pred, _ := r.Predict([][]float64{{100, 2, 5}})
	if math.Abs(pred[0]-201) > 1e-6 {
		t.Fatalf("pred = %v, want 201", pred[0])
	}
}

func TestForestLearnsStep(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 60; i++ {
		x := float64(i)
		X = append(X, []float64{x})
		if i < 30 {
			y = append(y, 1)
		} else {
			y = append(y, 9)
		}
	}
	f := NewForestRegressor(ForestConfig{Trees: 20, Seed: 7})
	if err := f.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred, err := f.Predict([][]float64{{2}, {55}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(pred[0]-1) > 0.5 || math.Abs(pred[1]-9) > 0.5 {
		t.Fatalf("unexpected predictions %v", pred)
	}
}

func TestScaler(t *testing.T) {
	X := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s, err := FitScaler(X)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Scale[1] != 1 {
		t.Fatalf("constant column scale = %v", s.Scale[1])
	}
	out := s.Transform(X)
	if out[1][0] != 0 || out[0][1] != 0 {
		t.Fatalf("unexpected transform %v", out)
	}
}

func TestEvaluateConstantTarget(t *testing.T) {
	if m := Evaluate([]float64{2, 2}, []float64{2, 2}); m.R2 != 1 || m.MAE != 0 {
		t.Fatalf("perfect constant fit: %+v", m)
	}
	if m := Evaluate([]float64{2, 2}, []float64{1, 3}); m.R2 != 0 || m.RMSE != 1 {
		t.Fatalf("imperfect constant fit: %+v", m)
	}
}

func TestEvaluateAccuracy(t *testing.T) {
	actual := models.PriceSeries{Name: "WTI"}
	res := models.ForecastResult{Commodity: "WTI"}
	for i, pair := range [][2]float64{{100, 101}, {102, 103}, {101, 104}} {
		ts := start.AddDate(0, 0, i)
		actual.Points = append(actual.Points, models.PricePoint{Time: ts, Price: pair[0]})
		res.Points = append(res.Points, models.ForecastPoint{Time: ts, Forecast: pair[1]})
	}
	acc, err := EvaluateAccuracy(actual, res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.Points != 3 || math.Abs(acc.MAE-5.0/3) > 1e-9 {
		t.Fatalf("unexpected accuracy %+v", acc)
	}
	if acc.DirectionAccuracy != 50 {
		t.Fatalf("direction accuracy = %v, want 50", acc.DirectionAccuracy)
	}

	sum, err := Summarize(res, nil)
	if err != nil || sum.Days != 3 || sum.Min != 101 || sum.Max != 104 {
		t.Fatalf("unexpected summary %+v, err %v", sum, err)
	}
}
