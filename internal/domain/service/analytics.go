package service

// Regressor is the capability set shared by every forecasting model variant.
// X rows are scaled feature vectors, y the aligned targets.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
	// Score returns the coefficient of determination on (X, y).
	Score(X [][]float64, y []float64) (float64, error)
}
