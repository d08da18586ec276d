// Package alerts evaluates threshold and signal rules against price series
// and keeps a bounded history of the alerts it raised.
package alerts

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"EnergyPulse/internal/domain/models"
)

const DefaultHistoryCap = 1000

// Config configures an Engine.
type Config struct {
	Rules           models.AlertRules
	HistoryCap      int
	CorrelationPair [2]string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the random alert ID source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithEvaluators replaces the per-series evaluator list.
func WithEvaluators(evs ...Evaluator) Option {
	return func(e *Engine) { e.evaluators = evs }
}

// Engine owns the rule set and the alert history. It does no locking;
// callers sharing an Engine must serialize access.
type Engine struct {
	rules      models.AlertRules
	history    []models.AlertRecord
	cap        int
	pair       [2]string
	evaluators []Evaluator
	now        func() time.Time
	newID      func() string
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultHistoryCap
	}
	if cfg.Rules == (models.AlertRules{}) {
		cfg.Rules = models.DefaultAlertRules()
	}
	e := &Engine{
		rules:      cfg.Rules,
		cap:        cfg.HistoryCap,
		pair:       cfg.CorrelationPair,
		evaluators: DefaultEvaluators,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateAll evaluates every series plus the correlation pair, records the
// batch in history and returns it. The batch is ordered by severity (high
// first) and then newest first.
func (e *Engine) GenerateAll(seriesMap map[string]models.PriceSeries) []models.AlertRecord {
	names := make([]string, 0, len(seriesMap))
	for name := range seriesMap {
		names = append(names, name)
	}
	sort.Strings(names)

	var batch []models.AlertRecord
	for _, name := range names {
		s := seriesMap[name]
		if s.Len() == 0 {
			continue
		}
		if s.Name == "" {
			s.Name = name
		}
		for _, ev := range e.evaluators {
			batch = append(batch, ev(s, e.rules)...)
		}
	}
	a, okA := seriesMap[e.pair[0]]
	b, okB := seriesMap[e.pair[1]]
	if okA && okB && a.Len() > 0 && b.Len() > 0 {
		a.Name, b.Name = e.pair[0], e.pair[1]
		batch = append(batch, CheckCorrelation(a, b)...)
	}

	ts := e.now()
	for i := range batch {
		batch[i].ID = e.newID()
		batch[i].Timestamp = ts
	}
	SortAlerts(batch)

	e.history = append(e.history, batch...)
	if over := len(e.history) - e.cap; over > 0 {
		e.history = slices.Clone(e.history[over:])
	}
	return slices.Clone(batch)
}

// SortAlerts orders alerts by severity, most urgent first, then newest first.
func SortAlerts(alerts []models.AlertRecord) {
	slices.SortStableFunc(alerts, func(a, b models.AlertRecord) int {
		if d := a.Severity.Rank() - b.Severity.Rank(); d != 0 {
			return d
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// Summary counts alerts raised within the last windowHours.
func (e *Engine) Summary(windowHours int) models.AlertSummary {
	cutoff := e.now().Add(-time.Duration(windowHours) * time.Hour)
	s := models.AlertSummary{WindowHours: windowHours, ByType: map[models.AlertType]int{}}
	for _, a := range e.history {
		if !a.Timestamp.After(cutoff) {
			continue
		}
		s.Total++
		switch a.Severity {
		case models.SeverityHigh:
			s.High++
		case models.SeverityMedium:
			s.Medium++
		case models.SeverityLow:
			s.Low++
		}
		s.ByType[a.Type]++
	}
	return s
}

// History returns a copy of the retained alerts, oldest first.
func (e *Engine) History() []models.AlertRecord {
	return slices.Clone(e.history)
}

// Rules returns the current rule set.
func (e *Engine) Rules() models.AlertRules {
	return e.rules
}

// UpdateRules merges p into the current rules and returns the result.
func (e *Engine) UpdateRules(p models.AlertRulesPatch) models.AlertRules {
	e.rules = e.rules.Merge(p)
	return e.rules
}

// ApplyRuleMap merges a flat key/value mapping. Unknown keys are skipped and
// returned; a recognised key with the wrong type fails the whole update.
func (e *Engine) ApplyRuleMap(values map[string]any) (ignored []string, err error) {
	p, ignored, err := ParseRuleMap(values)
	if err != nil {
		return nil, err
	}
	e.UpdateRules(p)
	return ignored, nil
}

// ParseRuleMap converts camelCase rule keys into a patch. Keys it does not
// recognise are returned sorted.
func ParseRuleMap(values map[string]any) (p models.AlertRulesPatch, ignored []string, err error) {
	for key, raw := range values {
		switch key {
		case "priceChangeThreshold":
			p.PriceChangeThreshold, err = asFloat(key, raw)
		case "volatilityThreshold":
			p.VolatilityThreshold, err = asFloat(key, raw)
		case "rsiOverbought":
			p.RSIOverbought, err = asFloat(key, raw)
		case "rsiOversold":
			p.RSIOversold, err = asFloat(key, raw)
		case "bollingerBandBreach":
			p.BollingerBandBreach, err = asBool(key, raw)
		case "movingAverageCross":
			p.MovingAverageCross, err = asBool(key, raw)
		default:
			ignored = append(ignored, key)
		}
		if err != nil {
			return models.AlertRulesPatch{}, nil, err
		}
	}
	sort.Strings(ignored)
	return p, ignored, nil
}

func asFloat(key string, raw any) (*float64, error) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		return nil, fmt.Errorf("rule %s: expected a number, got %T", key, raw)
	}
	return &v, nil
}

func asBool(key string, raw any) (*bool, error) {
	switch b := raw.(type) {
	case bool:
		return &b, nil
	case string:
		switch strings.ToLower(b) {
		case "true":
			v := true
			return &v, nil
		case "false":
			v := false
			return &v, nil
		}
	}
	return nil, fmt.Errorf("rule %s: expected a boolean, got %T", key, raw)
}
