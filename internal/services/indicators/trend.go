package indicators

import "EnergyPulse/internal/domain/models"

// DetectTrend compares the short and long SMA at the newest point.
func DetectTrend(values []float64, short, long int) models.Trend {
	if short < 1 || long < 1 || len(values) < long || len(values) < short {
		return models.TrendInsufficientData
	}
	s, _ := LastSMA(values, short)
	l, _ := LastSMA(values, long)
	switch {
	case s > l:
		return models.TrendUp
	case s < l:
		return models.TrendDown
	default:
		return models.TrendSideways
	}
}
