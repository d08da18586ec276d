// Package indicators implements technical indicators over daily price series.
//
// Scalar results come back as (value, error) where the error wraps
// models.ErrInsufficientData or models.ErrDegenerateComputation. Series
// results have the same length as the input and hold NaN in warm-up slots.
package indicators

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"EnergyPulse/internal/domain/models"
)

// SMA returns the simple moving average of values. The first window-1 slots
// and every slot when len(values) < window are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window < 1 || len(values) < window {
		return out
	}
	if window == 1 {
		copy(out, values)
		return out
	}
	sma := talib.Sma(values, window)
	copy(out[window-1:], sma[window-1:])
	return out
}

// MovingAverages computes one SMA column per window.
func MovingAverages(values []float64, windows []int) map[int][]float64 {
	out := make(map[int][]float64, len(windows))
	for _, w := range windows {
		out[w] = SMA(values, w)
	}
	return out
}

// LastSMA returns the moving average at the newest point.
func LastSMA(values []float64, window int) (float64, error) {
	if window < 1 {
		return 0, fmt.Errorf("sma window %d: %w", window, models.ErrDegenerateComputation)
	}
	if len(values) < window {
		return 0, fmt.Errorf("sma(%d) over %d points: %w", window, len(values), models.ErrInsufficientData)
	}
	sma := SMA(values, window)
	return sma[len(sma)-1], nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
