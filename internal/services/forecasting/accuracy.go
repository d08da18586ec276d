package forecasting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"EnergyPulse/internal/domain/models"
)

// EvaluateAccuracy compares a forecast with realised prices over their common timestamps.
func EvaluateAccuracy(actual models.PriceSeries, forecast models.ForecastResult) (models.ForecastAccuracy, error) {
	index := make(map[int64]float64, actual.Len())
	for _, p := range actual.Points {
		index[p.Time.UnixNano()] = p.Price
	}
	var a, f []float64
	for _, p := range forecast.Points {
		if v, ok := index[p.Time.UnixNano()]; ok {
			a = append(a, v)
			f = append(f, p.Forecast)
		}
	}
	if len(a) < 2 {
		return models.ForecastAccuracy{}, fmt.Errorf("accuracy: %d aligned points: %w", len(a), models.ErrInsufficientData)
	}

	m := Evaluate(a, f)
	var ape float64
	var apeN int
	for i := range a {
		if a[i] == 0 {
			continue
		}
		ape += math.Abs((a[i] - f[i]) / a[i])
		apeN++
	}
	var hits int
	for i := 1; i < len(a); i++ {
		if sign(a[i]-a[i-1]) == sign(f[i]-f[i-1]) {
			hits++
		}
	}
	acc := models.ForecastAccuracy{
		Points:            len(a),
		MAE:               m.MAE,
		RMSE:              m.RMSE,
		DirectionAccuracy: float64(hits) / float64(len(a)-1) * 100,
	}
	if apeN > 0 {
		acc.MAPE = ape / float64(apeN) * 100
	}
	return acc, nil
}

// Summarize describes a forecast together with the artifact that produced it.
func Summarize(res models.ForecastResult, a *ModelArtifact) (models.ForecastSummary, error) {
	if len(res.Points) == 0 {
		return models.ForecastSummary{}, fmt.Errorf("summary %s: empty forecast: %w", res.Commodity, models.ErrInsufficientData)
	}
	values := res.Forecasts()
	s := models.ForecastSummary{
		Commodity:   res.Commodity,
		Model:       res.Model,
		PeriodStart: res.Points[0].Time,
		PeriodEnd:   res.Points[len(res.Points)-1].Time,
		Days:        len(res.Points),
		Mean:        stat.Mean(values, nil),
		Min:         floats.Min(values),
		Max:         floats.Max(values),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	if a != nil {
		s.TrainMetrics = a.TrainMetrics
		s.TestMetrics = a.TestMetrics
	}
	return s, nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
