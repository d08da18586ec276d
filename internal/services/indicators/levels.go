package indicators

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"EnergyPulse/internal/domain/models"
)

// SupportResistance returns the rolling min and max over the last window points.
func SupportResistance(values []float64, window int) (support, resistance float64, err error) {
	if window < 1 {
		return 0, 0, fmt.Errorf("support/resistance window %d: %w", window, models.ErrDegenerateComputation)
	}
	if len(values) < window {
		return 0, 0, fmt.Errorf("support/resistance(%d) over %d points: %w", window, len(values), models.ErrInsufficientData)
	}
	if window == 1 {
		last := values[len(values)-1]
		return last, last, nil
	}
	tail := values[len(values)-window:]
	lows := talib.Min(tail, window)
	highs := talib.Max(tail, window)
	return lows[window-1], highs[window-1], nil
}

// PriceChanges reports the move over each period. Periods longer than the
// history are skipped.
func PriceChanges(values []float64, periods []int) []models.PriceChange {
	n := len(values)
	out := make([]models.PriceChange, 0, len(periods))
	for _, p := range periods {
		if p < 1 || n <= p {
			continue
		}
		prev := values[n-1-p]
		if prev == 0 {
			continue
		}
		abs := values[n-1] - prev
		out = append(out, models.PriceChange{
			Periods:  p,
			Absolute: abs,
			Percent:  abs / prev * 100,
		})
	}
	return out
}

// DetectAnomalies returns observations whose absolute z-score against the
// whole series exceeds threshold.
func DetectAnomalies(series models.PriceSeries, threshold float64) ([]models.Anomaly, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("anomalies over %d points: %w", series.Len(), models.ErrInsufficientData)
	}
	mean, std := stat.MeanStdDev(series.Values(), nil)
	if std == 0 || math.IsNaN(std) {
		return nil, fmt.Errorf("anomalies: constant series: %w", models.ErrDegenerateComputation)
	}
	var out []models.Anomaly
	for _, p := range series.Points {
		z := (p.Price - mean) / std
		if math.Abs(z) > threshold {
			out = append(out, models.Anomaly{Time: p.Time, Price: p.Price, ZScore: z})
		}
	}
	return out, nil
}
