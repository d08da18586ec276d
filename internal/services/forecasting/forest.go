package forecasting

import (
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"EnergyPulse/internal/domain/models"
)

// ForestConfig controls the bagged tree ensemble.
type ForestConfig struct {
	Trees    int
	MaxDepth int
	MinSplit int
	Seed     uint64
	Workers  int
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MaxDepth: 10, MinSplit: 2, Seed: 42}
}

// ForestRegressor averages regression trees fitted on bootstrap samples.
// Tree i draws its sample from a generator seeded by (Seed, i), so the fit
// does not depend on how trees are scheduled across workers.
type ForestRegressor struct {
	cfg   ForestConfig
	width int
	trees []*regressionTree
}

func NewForestRegressor(cfg ForestConfig) *ForestRegressor {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinSplit < 2 {
		cfg.MinSplit = 2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &ForestRegressor{cfg: cfg}
}

func (f *ForestRegressor) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("forest fit: %d rows, %d targets: %w", n, len(y), models.ErrInsufficientData)
	}
	trees := make([]*regressionTree, f.cfg.Trees)

	var g errgroup.Group
	g.SetLimit(f.cfg.Workers)
	for i := range trees {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(f.cfg.Seed, uint64(i)))
			sample := make([]int, n)
			for k := range sample {
				sample[k] = rng.IntN(n)
			}
			t := &regressionTree{maxDepth: f.cfg.MaxDepth, minSplit: f.cfg.MinSplit}
			t.fit(X, y, sample)
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("forest fit: %w", err)
	}
	f.trees = trees
	f.width = len(X[0])
	return nil
}

func (f *ForestRegressor) Predict(X [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, fmt.Errorf("forest predict: model not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != f.width {
			return nil, fmt.Errorf("forest predict: row %d has %d features, want %d", i, len(row), f.width)
		}
		var sum float64
		for _, t := range f.trees {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

func (f *ForestRegressor) Score(X [][]float64, y []float64) (float64, error) {
	pred, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2(y, pred), nil
}
