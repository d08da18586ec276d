package models

import "time"

// ModelKind selects the regressor used by the forecasting engine.
type ModelKind string

const (
	ModelRandomForest ModelKind = "random_forest"
	ModelLinear       ModelKind = "linear"
)

// ParseModelKind maps a raw name onto a known kind.
func ParseModelKind(s string) (ModelKind, error) {
	switch ModelKind(s) {
	case ModelRandomForest, ModelLinear:
		return ModelKind(s), nil
	default:
		return "", ErrUnknownModel
	}
}

// ModelMetrics are regression error metrics for one data split.
type ModelMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// ForecastPoint is one step of a forecast. Lower and Upper are zero until
// prediction intervals are attached.
type ForecastPoint struct {
	Time     time.Time `json:"time"`
	Forecast float64   `json:"forecast"`
	Lower    float64   `json:"lower_bound"`
	Upper    float64   `json:"upper_bound"`
}

// ForecastResult is the output of a multi-step forecast. Complete is false
// when the forecast stopped before the requested horizon.
type ForecastResult struct {
	Commodity  string          `json:"commodity"`
	Model      ModelKind       `json:"model"`
	Horizon    int             `json:"horizon"`
	Confidence float64         `json:"confidence,omitempty"`
	Complete   bool            `json:"complete"`
	Points     []ForecastPoint `json:"points"`
}

// Forecasts returns the point forecasts in order.
func (r ForecastResult) Forecasts() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Forecast
	}
	return out
}

// ForecastAccuracy compares a forecast with realised prices.
type ForecastAccuracy struct {
	Points            int     `json:"points"`
	MAE               float64 `json:"mae"`
	RMSE              float64 `json:"rmse"`
	MAPE              float64 `json:"mape"`
	DirectionAccuracy float64 `json:"direction_accuracy"`
}

// ForecastSummary describes a forecast and the model that produced it.
type ForecastSummary struct {
	Commodity    string       `json:"commodity"`
	Model        ModelKind    `json:"model"`
	PeriodStart  time.Time    `json:"period_start"`
	PeriodEnd    time.Time    `json:"period_end"`
	Days         int          `json:"days"`
	TrainMetrics ModelMetrics `json:"train_metrics"`
	TestMetrics  ModelMetrics `json:"test_metrics"`
	Mean         float64      `json:"mean"`
	Min          float64      `json:"min"`
	Max          float64      `json:"max"`
	Std          float64      `json:"std"`
}

// ForecastResponse is what the forecast endpoint returns. Warning carries the
// reason a forecast stopped early.
type ForecastResponse struct {
	Forecast ForecastResult   `json:"forecast"`
	Summary  *ForecastSummary `json:"summary,omitempty"`
	Warning  string           `json:"warning,omitempty"`
	Cached   bool             `json:"cached"`
}

// BacktestResult scores a forecast made on truncated history against the
// prices that followed.
type BacktestResult struct {
	Commodity string           `json:"commodity"`
	Model     ModelKind        `json:"model"`
	Holdout   int              `json:"holdout"`
	Accuracy  ForecastAccuracy `json:"accuracy"`
	Forecast  ForecastResult   `json:"forecast"`
}
