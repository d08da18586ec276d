package forecasting

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"EnergyPulse/internal/domain/models"
)

// PredictionIntervals attaches a uniform two-sided band to every point. The
// width is z * sigma where sigma is the sample deviation of the point
// forecasts themselves, so it does not grow with the horizon.
func PredictionIntervals(res models.ForecastResult, confidence float64) models.ForecastResult {
	out := res
	out.Confidence = confidence
	out.Points = make([]models.ForecastPoint, len(res.Points))
	copy(out.Points, res.Points)

	var sigma float64
	if len(res.Points) > 1 {
		sigma = stat.StdDev(res.Forecasts(), nil)
	}
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	margin := z * sigma
	for i := range out.Points {
		out.Points[i].Lower = out.Points[i].Forecast - margin
		out.Points[i].Upper = out.Points[i].Forecast + margin
	}
	return out
}
