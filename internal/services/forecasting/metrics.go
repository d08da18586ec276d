package forecasting

import (
	"math"

	"EnergyPulse/internal/domain/models"
)

// Evaluate computes MAE, RMSE and R^2 for aligned slices.
func Evaluate(yTrue, yPred []float64) models.ModelMetrics {
	if len(yTrue) == 0 {
		return models.ModelMetrics{}
	}
	var absSum, sqSum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(yTrue))
	return models.ModelMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		R2:   r2(yTrue, yPred),
	}
}

// r2 is the coefficient of determination. A constant target scores 1 when
// predicted exactly and 0 otherwise.
func r2(yTrue, yPred []float64) float64 {
	var mean float64
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))
	var ssRes, ssTot float64
	for i, v := range yTrue {
		ssRes += (v - yPred[i]) * (v - yPred[i])
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
