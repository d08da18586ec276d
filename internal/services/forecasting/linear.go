package forecasting

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"EnergyPulse/internal/domain/models"
)

// singular values below rcond times the largest are treated as zero.
const rcond = 1e-10

// LinearRegressor is ordinary least squares with an intercept. Rank-deficient
// designs get the minimum-norm solution.
type LinearRegressor struct {
	Coef      []float64
	Intercept float64
}

func NewLinearRegressor() *LinearRegressor { return &LinearRegressor{} }

func (r *LinearRegressor) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("linear fit: %d rows, %d targets: %w", n, len(y), models.ErrInsufficientData)
	}
	p := len(X[0])

	xMean := make([]float64, p)
	for _, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	a := mat.NewDense(n, p, nil)
	b := mat.NewDense(n, 1, nil)
	for i, row := range X {
		for j, v := range row {
			a.Set(i, j, v-xMean[j])
		}
		b.Set(i, 0, y[i]-yMean)
	}

	coef := make([]float64, p)
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return fmt.Errorf("linear fit: svd did not converge: %w", models.ErrDegenerateComputation)
	}
	if rank := svd.Rank(rcond); rank > 0 {
		var w mat.Dense
		svd.SolveTo(&w, b, rank)
		coef = mat.Col(nil, 0, &w)
	}

	intercept := yMean
	for j, c := range coef {
		intercept -= c * xMean[j]
	}
	r.Coef, r.Intercept = coef, intercept
	return nil
}

func (r *LinearRegressor) Predict(X [][]float64) ([]float64, error) {
	if r.Coef == nil {
		return nil, fmt.Errorf("linear predict: model not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(r.Coef) {
			return nil, fmt.Errorf("linear predict: row %d has %d features, want %d", i, len(row), len(r.Coef))
		}
		v := r.Intercept
		for j, x := range row {
			v += r.Coef[j] * x
		}
		out[i] = v
	}
	return out, nil
}

func (r *LinearRegressor) Score(X [][]float64, y []float64) (float64, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2(y, pred), nil
}
