package models

import "time"

// Severity of an alert. Ordered high > medium > low.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities for sorting; lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// AlertType names the rule family that raised an alert.
type AlertType string

const (
	AlertPriceChange AlertType = "price_change"
	AlertPriceLevel  AlertType = "price_level"
	AlertVolatility  AlertType = "volatility"
	AlertRSI         AlertType = "technical_rsi"
	AlertMACross     AlertType = "technical_ma_cross"
	AlertBollinger   AlertType = "technical_bb"
	AlertCorrelation AlertType = "correlation"
)

// AlertRecord is an immutable alert. Commodity holds a pair label such as
// "WTI-Natural Gas" for correlation alerts.
type AlertRecord struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Severity  Severity  `json:"severity"`
	Commodity string    `json:"commodity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// AlertSummary aggregates history over a trailing window.
type AlertSummary struct {
	WindowHours int               `json:"window_hours"`
	Total       int               `json:"total"`
	High        int               `json:"high"`
	Medium      int               `json:"medium"`
	Low         int               `json:"low"`
	ByType      map[AlertType]int `json:"by_type"`
}

// AlertRules is the full set of recognised rule options.
type AlertRules struct {
	PriceChangeThreshold float64 `json:"priceChangeThreshold" yaml:"price_change_threshold" default:"5.0"`
	VolatilityThreshold  float64 `json:"volatilityThreshold" yaml:"volatility_threshold" default:"0.3"`
	RSIOverbought        float64 `json:"rsiOverbought" yaml:"rsi_overbought" default:"70"`
	RSIOversold          float64 `json:"rsiOversold" yaml:"rsi_oversold" default:"30"`
	BollingerBandBreach  bool    `json:"bollingerBandBreach" yaml:"bollinger_band_breach" default:"true"`
	MovingAverageCross   bool    `json:"movingAverageCross" yaml:"moving_average_cross" default:"true"`
}

// DefaultAlertRules returns the stock rule set.
func DefaultAlertRules() AlertRules {
	return AlertRules{
		PriceChangeThreshold: 5.0,
		VolatilityThreshold:  0.3,
		RSIOverbought:        70,
		RSIOversold:          30,
		BollingerBandBreach:  true,
		MovingAverageCross:   true,
	}
}

// AlertRulesPatch is a partial update; nil fields keep their current value.
type AlertRulesPatch struct {
	PriceChangeThreshold *float64 `json:"priceChangeThreshold" validate:"omitempty,gte=0"`
	VolatilityThreshold  *float64 `json:"volatilityThreshold" validate:"omitempty,gte=0"`
	RSIOverbought        *float64 `json:"rsiOverbought" validate:"omitempty,gte=0,lte=100"`
	RSIOversold          *float64 `json:"rsiOversold" validate:"omitempty,gte=0,lte=100"`
	BollingerBandBreach  *bool    `json:"bollingerBandBreach"`
	MovingAverageCross   *bool    `json:"movingAverageCross"`
}

// Merge applies the non-nil fields of p on top of r.
func (r AlertRules) Merge(p AlertRulesPatch) AlertRules {
	if p.PriceChangeThreshold != nil {
		r.PriceChangeThreshold = *p.PriceChangeThreshold
	}
	if p.VolatilityThreshold != nil {
		r.VolatilityThreshold = *p.VolatilityThreshold
	}
	if p.RSIOverbought != nil {
		r.RSIOverbought = *p.RSIOverbought
	}
	if p.RSIOversold != nil {
		r.RSIOversold = *p.RSIOversold
	}
	if p.BollingerBandBreach != nil {
		r.BollingerBandBreach = *p.BollingerBandBreach
	}
	if p.MovingAverageCross != nil {
		r.MovingAverageCross = *p.MovingAverageCross
	}
	return r
}
