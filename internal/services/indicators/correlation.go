package indicators

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"EnergyPulse/internal/domain/models"
)

// Align inner-joins two series on timestamp, keeping the order of a.
func Align(a, b models.PriceSeries) (xa, xb []float64, times []time.Time) {
	index := make(map[int64]float64, b.Len())
	for _, p := range b.Points {
		index[p.Time.UnixNano()] = p.Price
	}
	for _, p := range a.Points {
		v, ok := index[p.Time.UnixNano()]
		if !ok {
			continue
		}
		xa = append(xa, p.Price)
		xb = append(xb, v)
		times = append(times, p.Time)
	}
	return xa, xb, times
}

// Correlation is the Pearson coefficient over the timestamp overlap of a and b.
func Correlation(a, b models.PriceSeries) (float64, error) {
	xa, xb, _ := Align(a, b)
	return Pearson(xa, xb)
}

// Pearson is the correlation coefficient of two aligned samples.
func Pearson(xa, xb []float64) (float64, error) {
	if len(xa) < 2 {
		return 0, fmt.Errorf("correlation over %d aligned points: %w", len(xa), models.ErrInsufficientData)
	}
	if stat.Variance(xa, nil) == 0 || stat.Variance(xb, nil) == 0 {
		return 0, fmt.Errorf("correlation: constant input: %w", models.ErrDegenerateComputation)
	}
	return stat.Correlation(xa, xb, nil), nil
}
