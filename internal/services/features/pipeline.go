// Package features builds the tabular feature matrix used by the forecasting engine.
package features

import (
	"fmt"
	"math"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/services/indicators"
)

// Config lists the lookbacks of every technical feature.
type Config struct {
	Lags       []int
	MAWindows  []int
	StdWindows []int
	PctPeriods []int
	RSIWindow  int
}

func DefaultConfig() Config {
	return Config{
		Lags:       []int{1, 2, 3, 5, 7, 14},
		MAWindows:  []int{5, 10, 20},
		StdWindows: []int{5, 20},
		PctPeriods: []int{1, 5},
		RSIWindow:  14,
	}
}

// Pipeline turns a price series into a Matrix. It is stateless.
type Pipeline struct {
	cfg     Config
	columns []string
}

func NewPipeline(cfg Config) *Pipeline {
	cols := append([]string{}, calendarColumns...)
	for _, l := range cfg.Lags {
		cols = append(cols, fmt.Sprintf("lag_%d", l))
	}
	for _, w := range cfg.MAWindows {
		cols = append(cols, fmt.Sprintf("ma_%d", w), fmt.Sprintf("ma_ratio_%d", w))
	}
	for _, w := range cfg.StdWindows {
		cols = append(cols, fmt.Sprintf("volatility_%d", w))
	}
	for _, p := range cfg.PctPeriods {
		cols = append(cols, fmt.Sprintf("pct_change_%d", p))
	}
	cols = append(cols, "rsi")
	return &Pipeline{cfg: cfg, columns: cols}
}

// Columns returns the feature layout in a fixed order.
func (p *Pipeline) Columns() []string {
	return append([]string(nil), p.columns...)
}

// Lookback is the longest history any feature needs.
func (p *Pipeline) Lookback() int {
	longest := p.cfg.RSIWindow + 1
	for _, set := range [][]int{p.cfg.Lags, p.cfg.PctPeriods} {
		for _, v := range set {
			longest = max(longest, v+1)
		}
	}
	for _, set := range [][]int{p.cfg.MAWindows, p.cfg.StdWindows} {
		for _, v := range set {
			longest = max(longest, v)
		}
	}
	return longest
}

// Prepare builds the matrix. Rows with any missing or non-finite value,
// including an unknown target, are dropped.
func (p *Pipeline) Prepare(series models.PriceSeries) Matrix {
	prices := series.Values()
	n := len(prices)

	technical := make([][]float64, 0, len(p.columns)-len(calendarColumns))
	for _, l := range p.cfg.Lags {
		technical = append(technical, shift(prices, l))
	}
	mas := indicators.MovingAverages(prices, p.cfg.MAWindows)
	for _, w := range p.cfg.MAWindows {
		ma := mas[w]
		ratio := make([]float64, n)
		for i := range ratio {
			ratio[i] = prices[i] / ma[i]
		}
		technical = append(technical, ma, ratio)
	}
	for _, w := range p.cfg.StdWindows {
		technical = append(technical, indicators.RollingStd(prices, w))
	}
	for _, per := range p.cfg.PctPeriods {
		technical = append(technical, indicators.PctChange(prices, per))
	}
	technical = append(technical, indicators.RSISeries(prices, p.cfg.RSIWindow))

	m := Matrix{Columns: p.Columns()}
	for i, pt := range series.Points {
		row := calendarRow(pt.Time)
		for _, col := range technical {
			row = append(row, col[i])
		}
		if !finite(pt.Price) || !allFinite(row) {
			continue
		}
		m.Times = append(m.Times, pt.Time)
		m.Rows = append(m.Rows, row)
		m.Target = append(m.Target, pt.Price)
	}
	return m
}

var defaultPipeline = NewPipeline(DefaultConfig())

// PrepareFeatures runs the default pipeline.
func PrepareFeatures(series models.PriceSeries) Matrix {
	return defaultPipeline.Prepare(series)
}

func shift(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < n {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i-n]
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(row []float64) bool {
	for _, v := range row {
		if !finite(v) {
			return false
		}
	}
	return true
}
