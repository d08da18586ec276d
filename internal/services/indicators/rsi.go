package indicators

import (
	"fmt"

	"EnergyPulse/internal/domain/models"
)

// RSI returns the relative strength index at the newest point using simple
// means of gains and losses over the last window deltas.
//
// No losses in the window yields 100. A window without any movement has no
// defined RSI and returns ErrDegenerateComputation.
func RSI(values []float64, window int) (float64, error) {
	if window < 1 {
		return 0, fmt.Errorf("rsi window %d: %w", window, models.ErrDegenerateComputation)
	}
	if len(values) < window+1 {
		return 0, fmt.Errorf("rsi(%d) over %d points: %w", window, len(values), models.ErrInsufficientData)
	}
	return rsiAt(values, len(values)-1, window)
}

// RSISeries returns RSI for every point; warm-up and degenerate slots are NaN.
func RSISeries(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window < 1 {
		return out
	}
	for i := window; i < len(values); i++ {
		if v, err := rsiAt(values, i, window); err == nil {
			out[i] = v
		}
	}
	return out
}

func rsiAt(values []float64, end, window int) (float64, error) {
	var gains, losses float64
	for i := end - window + 1; i <= end; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(window)
	avgLoss := losses / float64(window)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 0, fmt.Errorf("rsi: flat window: %w", models.ErrDegenerateComputation)
		}
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
