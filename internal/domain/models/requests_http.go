package models

// Requests for the analytics HTTP endpoints. Defined in domain for reuse by handlers and tests.

type ForecastRequest struct {
	Commodity  string  `query:"commodity" json:"commodity" validate:"required"`
	Model      string  `query:"model" json:"model" default:"random_forest" validate:"oneof=random_forest linear"`
	Horizon    int     `query:"horizon" json:"horizon" default:"30" validate:"gte=1,lte=365"`
	Confidence float64 `query:"confidence" json:"confidence" default:"0.95" validate:"gt=0,lt=1"`
	Lookback   int     `query:"lookback" json:"lookback" default:"365" validate:"gte=30,lte=3650"`
}

type AnalysisRequest struct {
	Commodities string `query:"commodities" json:"commodities"`
	Lookback    int    `query:"lookback" json:"lookback" default:"120" validate:"gte=1,lte=3650"`
}

type GenerateAlertsRequest struct {
	Commodities []string `json:"commodities"`
	Lookback    int      `json:"lookback" default:"120" validate:"gte=1,lte=3650"`
}

type AlertSummaryRequest struct {
	Hours int `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=720"`
}

type BacktestRequest struct {
	Commodity string `query:"commodity" json:"commodity" validate:"required"`
	Model     string `query:"model" json:"model" default:"random_forest" validate:"oneof=random_forest linear"`
	Holdout   int    `query:"holdout" json:"holdout" default:"30" validate:"gte=2,lte=365"`
	Lookback  int    `query:"lookback" json:"lookback" default:"365" validate:"gte=30,lte=3650"`
}

type PricesRequest struct {
	Commodity string `query:"commodity" json:"commodity" validate:"required"`
	From      string `query:"from" json:"from"`
	To        string `query:"to" json:"to"`
}

type AlertHistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
