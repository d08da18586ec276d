package models

import "errors"

// Analytics failures. Callers branch on them with errors.Is.
var (
	// ErrInsufficientData means the series is shorter than the required lookback.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoUsableFeatures means every feature row was dropped during warm-up.
	ErrNoUsableFeatures = errors.New("no usable features")
	// ErrDegenerateComputation means the formula is undefined for the input (zero variance, 0/0).
	ErrDegenerateComputation = errors.New("degenerate computation")
	// ErrPartialForecast accompanies a forecast that stopped before the requested horizon.
	ErrPartialForecast = errors.New("forecast terminated early")

	ErrUnknownCommodity = errors.New("unknown commodity")
	ErrUnknownModel     = errors.New("unknown model kind")
)
