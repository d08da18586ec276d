package forecasting

import (
	"fmt"
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/services/features"
)

// TrainerConfig holds training parameters.
type TrainerConfig struct {
	MinObservations int
	TestFraction    float64
	Forest          ForestConfig
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinObservations: 30,
		TestFraction:    0.2,
		Forest:          DefaultForestConfig(),
	}
}

type Trainer struct {
	cfg      TrainerConfig
	pipeline *features.Pipeline
	now      func() time.Time
}

func NewTrainer(cfg TrainerConfig, pipeline *features.Pipeline) *Trainer {
	if cfg.MinObservations <= 0 {
		cfg.MinObservations = 30
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	return &Trainer{cfg: cfg, pipeline: pipeline, now: time.Now}
}

// Train fits a model of the given kind on series. The split is chronological
// and the scaler only sees the training rows.
func (t *Trainer) Train(series models.PriceSeries, kind models.ModelKind) (*ModelArtifact, error) {
	if series.Len() < t.cfg.MinObservations {
		return nil, fmt.Errorf("train %s: %d observations, need %d: %w",
			series.Name, series.Len(), t.cfg.MinObservations, models.ErrInsufficientData)
	}
	m := t.pipeline.Prepare(series)
	if m.Empty() {
		return nil, fmt.Errorf("train %s: %w", series.Name, models.ErrNoUsableFeatures)
	}
	train, test := m.Split(t.cfg.TestFraction)
	if train.Len() < 2 {
		return nil, fmt.Errorf("train %s: %d training rows: %w", series.Name, train.Len(), models.ErrNoUsableFeatures)
	}

	scaler, err := FitScaler(train.Rows)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", series.Name, err)
	}
	model, err := NewRegressor(kind, t.cfg.Forest)
	if err != nil {
		return nil, err
	}
	xTrain := scaler.Transform(train.Rows)
	if err := model.Fit(xTrain, train.Target); err != nil {
		return nil, fmt.Errorf("train %s: %w", series.Name, err)
	}

	a := &ModelArtifact{
		Commodity:      series.Name,
		Kind:           kind,
		Model:          model,
		Scaler:         scaler,
		FeatureColumns: m.Columns,
		Observations:   series.Len(),
		TrainedAt:      t.now(),
	}
	pred, err := model.Predict(xTrain)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", series.Name, err)
	}
	a.TrainMetrics = Evaluate(train.Target, pred)
	if !test.Empty() {
		pred, err := model.Predict(scaler.Transform(test.Rows))
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", series.Name, err)
		}
		a.TestMetrics = Evaluate(test.Target, pred)
	}
	return a, nil
}
