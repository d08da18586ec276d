package indicators

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"EnergyPulse/internal/domain/models"
)

// Bands holds Bollinger band columns aligned with the input.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Last returns the bands at the newest point.
func (b Bands) Last() (middle, upper, lower float64) {
	n := len(b.Middle) - 1
	return b.Middle[n], b.Upper[n], b.Lower[n]
}

// BollingerBands computes SMA(window) +/- k sample standard deviations.
func BollingerBands(values []float64, window int, k float64) (Bands, error) {
	if window < 2 {
		return Bands{}, fmt.Errorf("bollinger window %d: %w", window, models.ErrDegenerateComputation)
	}
	if len(values) < window {
		return Bands{}, fmt.Errorf("bollinger(%d) over %d points: %w", window, len(values), models.ErrInsufficientData)
	}
	middle := SMA(values, window)
	std := RollingStd(values, window)
	b := Bands{
		Middle: middle,
		Upper:  nanSlice(len(values)),
		Lower:  nanSlice(len(values)),
	}
	for i := window - 1; i < len(values); i++ {
		b.Upper[i] = middle[i] + k*std[i]
		b.Lower[i] = middle[i] - k*std[i]
	}
	return b, nil
}

// PriceBands returns mean +/- i standard deviations for i in 1..n over the whole series.
func PriceBands(values []float64, n int) ([]models.PriceBand, float64, error) {
	if len(values) < 2 {
		return nil, 0, fmt.Errorf("price bands over %d points: %w", len(values), models.ErrInsufficientData)
	}
	mean, std := stat.MeanStdDev(values, nil)
	bands := make([]models.PriceBand, 0, n)
	for i := 1; i <= n; i++ {
		bands = append(bands, models.PriceBand{
			Level: i,
			Upper: mean + float64(i)*std,
			Lower: mean - float64(i)*std,
		})
	}
	return bands, mean, nil
}
