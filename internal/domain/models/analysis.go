package models

import "time"

// Trend is a coarse direction label derived from moving averages.
type Trend string

const (
	TrendUp               Trend = "Uptrend"
	TrendDown             Trend = "Downtrend"
	TrendSideways         Trend = "Sideways"
	TrendInsufficientData Trend = "Insufficient Data"
)

// Score maps a trend onto -1, 0 or +1 for sentiment aggregation.
func (t Trend) Score() float64 {
	switch t {
	case TrendUp:
		return 1
	case TrendDown:
		return -1
	default:
		return 0
	}
}

// PriceChange is the move over a number of observations.
type PriceChange struct {
	Periods  int     `json:"periods"`
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

// PriceBand is a mean +/- k standard deviation band.
type PriceBand struct {
	Level int     `json:"level"`
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// Anomaly is an observation whose z-score exceeds the threshold.
type Anomaly struct {
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	ZScore float64   `json:"z_score"`
}

// CommoditySnapshot is the per-commodity part of a market summary.
// Pointer fields are nil when the value could not be computed.
type CommoditySnapshot struct {
	Commodity    string        `json:"commodity"`
	AsOf         time.Time     `json:"as_of"`
	CurrentPrice float64       `json:"current_price"`
	Changes      []PriceChange `json:"changes"`
	Volatility   *float64      `json:"volatility,omitempty"`
	RSI          *float64      `json:"rsi,omitempty"`
	Trend        Trend         `json:"trend"`
	Support      *float64      `json:"support,omitempty"`
	Resistance   *float64      `json:"resistance,omitempty"`
	Bands        []PriceBand   `json:"bands,omitempty"`
	Anomalies    []Anomaly     `json:"anomalies,omitempty"`
}

// Sentiment is the aggregate market mood.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// MarketSummary aggregates snapshots across commodities.
type MarketSummary struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Sentiment   Sentiment           `json:"sentiment"`
	Commodities []CommoditySnapshot `json:"commodities"`
	Errors      map[string]string   `json:"errors,omitempty"`
}
