package alerts

import (
	"fmt"
	"math"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/services/indicators"
)

const (
	highPriceChangePct  = 10.0
	highVolatility      = 0.5
	levelProximity      = 0.01
	levelWindow         = 30
	volatilityWindow    = 20
	rsiWindow           = 14
	maShort, maLong     = 10, 20
	maMinObservations   = 50
	bollingerWindow     = 20
	bollingerK          = 2.0
	correlationWindow   = 30
	correlationMinPairs = 10
	negativeCorrelation = -0.5
	strongCorrelation   = 0.9
)

// Evaluator inspects one series and returns unstamped alerts. Evaluators are
// pure: the engine assigns IDs and timestamps.
type Evaluator func(series models.PriceSeries, rules models.AlertRules) []models.AlertRecord

// DefaultEvaluators runs in this order for every series.
var DefaultEvaluators = []Evaluator{
	CheckPriceChange,
	CheckVolatility,
	CheckRSI,
	CheckMACrossover,
	CheckBollinger,
}

// CheckPriceChange fires on a large last-step move and when the price sits
// within 1% of its trailing 30-point high or low.
func CheckPriceChange(series models.PriceSeries, rules models.AlertRules) []models.AlertRecord {
	values := series.Values()
	n := len(values)
	if n < 2 {
		return nil
	}
	var out []models.AlertRecord
	current, previous := values[n-1], values[n-2]

	if previous != 0 {
		change := (current - previous) / previous * 100
		if math.Abs(change) >= rules.PriceChangeThreshold {
			direction := "increased"
			if change < 0 {
				direction = "decreased"
			}
			severity := models.SeverityMedium
			if math.Abs(change) >= highPriceChangePct {
				severity = models.SeverityHigh
			}
			out = append(out, models.AlertRecord{
				Type:      models.AlertPriceChange,
				Severity:  severity,
				Commodity: series.Name,
				Message:   fmt.Sprintf("%s %s by %.2f%% to $%.2f", series.Name, direction, math.Abs(change), current),
				Value:     change,
			})
		}
	}

	window := min(levelWindow, n)
	low, high, err := indicators.SupportResistance(values, window)
	if err != nil {
		return out
	}
	if current >= high*(1-levelProximity) {
		out = append(out, levelAlert(series.Name, "high", current))
	}
	if current <= low*(1+levelProximity) {
		out = append(out, levelAlert(series.Name, "low", current))
	}
	return out
}

func levelAlert(name, side string, price float64) models.AlertRecord {
	return models.AlertRecord{
		Type:      models.AlertPriceLevel,
		Severity:  models.SeverityMedium,
		Commodity: name,
		Message:   fmt.Sprintf("%s approaching 30-day %s at $%.2f", name, side, price),
		Value:     price,
	}
}

// CheckVolatility fires when annualized 20-day volatility exceeds the threshold.
func CheckVolatility(series models.PriceSeries, rules models.AlertRules) []models.AlertRecord {
	values := series.Values()
	current, err := indicators.Volatility(values, volatilityWindow)
	if err != nil || current <= rules.VolatilityThreshold {
		return nil
	}
	var sum float64
	var count int
	for _, v := range indicators.VolatilitySeries(values, volatilityWindow) {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	avg := sum / float64(count)
	severity := models.SeverityMedium
	if current > highVolatility {
		severity = models.SeverityHigh
	}
	return []models.AlertRecord{{
		Type:      models.AlertVolatility,
		Severity:  severity,
		Commodity: series.Name,
		Message:   fmt.Sprintf("%s showing high volatility: %.2f%% (avg: %.2f%%)", series.Name, current*100, avg*100),
		Value:     current,
	}}
}

// CheckRSI fires on overbought or oversold 14-period RSI.
func CheckRSI(series models.PriceSeries, rules models.AlertRules) []models.AlertRecord {
	rsi, err := indicators.RSI(series.Values(), rsiWindow)
	if err != nil {
		return nil
	}
	var condition string
	switch {
	case rsi >= rules.RSIOverbought:
		condition = "overbought"
	case rsi <= rules.RSIOversold:
		condition = "oversold"
	default:
		return nil
	}
	return []models.AlertRecord{{
		Type:      models.AlertRSI,
		Severity:  models.SeverityMedium,
		Commodity: series.Name,
		Message:   fmt.Sprintf("%s RSI indicates %s condition: %.1f", series.Name, condition, rsi),
		Value:     rsi,
	}}
}

// CheckMACrossover fires when the 10-period SMA crosses the 20-period SMA on
// the newest point. It needs at least 50 observations.
func CheckMACrossover(series models.PriceSeries, rules models.AlertRules) []models.AlertRecord {
	if !rules.MovingAverageCross || series.Len() < maMinObservations {
		return nil
	}
	values := series.Values()
	short := indicators.SMA(values, maShort)
	long := indicators.SMA(values, maLong)
	n := len(values)
	above := short[n-1] > long[n-1]
	wasAbove := short[n-2] > long[n-2]
	if above == wasAbove {
		return nil
	}
	direction, value := "bearish", -1.0
	if above {
		direction, value = "bullish", 1.0
	}
	return []models.AlertRecord{{
		Type:      models.AlertMACross,
		Severity:  models.SeverityMedium,
		Commodity: series.Name,
		Message:   fmt.Sprintf("%s moving average crossover signals %s trend", series.Name, direction),
		Value:     value,
	}}
}

// CheckBollinger fires when the newest price is strictly outside the 20-period bands.
func CheckBollinger(series models.PriceSeries, rules models.AlertRules) []models.AlertRecord {
	if !rules.BollingerBandBreach {
		return nil
	}
	values := series.Values()
	bands, err := indicators.BollingerBands(values, bollingerWindow, bollingerK)
	if err != nil {
		return nil
	}
	_, upper, lower := bands.Last()
	price := values[len(values)-1]
	switch {
	case price > upper:
		return []models.AlertRecord{{
			Type:      models.AlertBollinger,
			Severity:  models.SeverityMedium,
			Commodity: series.Name,
			Message:   fmt.Sprintf("%s broke above upper Bollinger Band: $%.2f > $%.2f", series.Name, price, upper),
			Value:     price - upper,
		}}
	case price < lower:
		return []models.AlertRecord{{
			Type:      models.AlertBollinger,
			Severity:  models.SeverityMedium,
			Commodity: series.Name,
			Message:   fmt.Sprintf("%s broke below lower Bollinger Band: $%.2f < $%.2f", series.Name, price, lower),
			Value:     lower - price,
		}}
	}
	return nil
}

// CheckCorrelation compares the trailing 30 points of a and b.
func CheckCorrelation(a, b models.PriceSeries) []models.AlertRecord {
	xa, xb, _ := indicators.Align(a.Tail(correlationWindow), b.Tail(correlationWindow))
	if len(xa) < correlationMinPairs {
		return nil
	}
	r, err := indicators.Pearson(xa, xb)
	if err != nil {
		return nil
	}
	pair := a.Name + "-" + b.Name
	switch {
	case r < negativeCorrelation:
		return []models.AlertRecord{{
			Type:      models.AlertCorrelation,
			Severity:  models.SeverityMedium,
			Commodity: pair,
			Message:   fmt.Sprintf("Unusual negative correlation between %s and %s: %.2f", a.Name, b.Name, r),
			Value:     r,
		}}
	case r > strongCorrelation:
		return []models.AlertRecord{{
			Type:      models.AlertCorrelation,
			Severity:  models.SeverityLow,
			Commodity: pair,
			Message:   fmt.Sprintf("Very high correlation between %s and %s: %.2f", a.Name, b.Name, r),
			Value:     r,
		}}
	}
	return nil
}
