package forecasting

import (
	"fmt"
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/domain/service"
)

// ModelArtifact bundles a fitted model with everything needed to score new
// rows. It is never mutated after Train returns it.
type ModelArtifact struct {
	Commodity      string
	Kind           models.ModelKind
	Model          service.Regressor
	Scaler         *StandardScaler
	FeatureColumns []string
	TrainMetrics   models.ModelMetrics
	TestMetrics    models.ModelMetrics
	Observations   int
	TrainedAt      time.Time
}

// PredictRow scales a row already aligned to FeatureColumns and predicts one value.
func (a *ModelArtifact) PredictRow(row []float64) (float64, error) {
	if len(row) != len(a.FeatureColumns) {
		return 0, fmt.Errorf("predict: %d features, want %d", len(row), len(a.FeatureColumns))
	}
	out, err := a.Model.Predict([][]float64{a.Scaler.TransformRow(row)})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// NewRegressor returns an unfitted model of the given kind.
func NewRegressor(kind models.ModelKind, forest ForestConfig) (service.Regressor, error) {
	switch kind {
	case models.ModelRandomForest:
		return NewForestRegressor(forest), nil
	case models.ModelLinear:
		return NewLinearRegressor(), nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownModel, kind)
	}
}
