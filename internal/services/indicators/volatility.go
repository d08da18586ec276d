package indicators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"EnergyPulse/internal/domain/models"
)

// TradingDays annualizes daily volatility.
const TradingDays = 252

// Returns computes simple returns; slot 0 is NaN.
func Returns(values []float64) []float64 {
	out := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out[i] = (values[i] - values[i-1]) / values[i-1]
	}
	return out
}

// PctChange returns the percent change over periods as a fraction; warm-up slots are NaN.
func PctChange(values []float64, periods int) []float64 {
	out := nanSlice(len(values))
	for i := periods; i < len(values); i++ {
		if values[i-periods] == 0 {
			continue
		}
		out[i] = values[i]/values[i-periods] - 1
	}
	return out
}

// RollingStd returns the sample standard deviation over each trailing window.
// A window containing NaN yields NaN.
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		out[i] = stat.StdDev(values[i-window+1:i+1], nil)
	}
	return out
}

// VolatilitySeries is the annualized rolling volatility of simple returns.
// The first valid slot is index window.
func VolatilitySeries(values []float64, window int) []float64 {
	std := RollingStd(Returns(values), window)
	scale := math.Sqrt(TradingDays)
	for i := range std {
		std[i] *= scale
	}
	return std
}

// Volatility returns annualized volatility at the newest point. It needs
// window returns, so window+1 prices.
func Volatility(values []float64, window int) (float64, error) {
	if window < 2 {
		return 0, fmt.Errorf("volatility window %d: %w", window, models.ErrDegenerateComputation)
	}
	if len(values) < window+1 {
		return 0, fmt.Errorf("volatility(%d) over %d points: %w", window, len(values), models.ErrInsufficientData)
	}
	series := VolatilitySeries(values[len(values)-window-1:], window)
	v := series[len(series)-1]
	if math.IsNaN(v) {
		return 0, fmt.Errorf("volatility: zero price in window: %w", models.ErrDegenerateComputation)
	}
	return v, nil
}
