package alerts

import (
	"fmt"
	"math"
	"testing"
	"time"

	"EnergyPulse/internal/domain/models"
)

var (
	now   = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	first = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func series(name string, values []float64) models.PriceSeries {
	s := models.PriceSeries{Name: name}
	for i, v := range values {
		s.Points = append(s.Points, models.PricePoint{Time: first.AddDate(0, 0, i), Price: v})
	}
	return s
}

func newTestEngine(opts ...Option) *Engine {
	seq := 0
	opts = append([]Option{
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("a-%d", seq) }),
	}, opts...)
	return NewEngine(Config{
		Rules:           models.DefaultAlertRules(),
		HistoryCap:      DefaultHistoryCap,
		CorrelationPair: [2]string{"WTI", "Natural Gas"},
	}, opts...)
}

func sideways(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + math.Sin(float64(i)*1.3)*0.4
	}
	return out
}

func TestCheckPriceChange(t *testing.T) {
	values := sideways(40, 50)
	values[39] = values[38] * 1.12
	alerts := CheckPriceChange(series("WTI", values), models.DefaultAlertRules())
	if len(alerts) != 2 {
		t.Fatalf("expected change and level alerts, got %+v", alerts)
	}
	if alerts[0].Type != models.AlertPriceChange || alerts[0].Severity != models.SeverityHigh {
		t.Fatalf("unexpected change alert %+v", alerts[0])
	}
	if alerts[1].Type != models.AlertPriceLevel || alerts[1].Message != fmt.Sprintf("WTI approaching 30-day high at $%.2f", values[39]) {
		t.Fatalf("unexpected level alert %+v", alerts[1])
	}

	values[39] = values[38] * 0.94
	alerts = CheckPriceChange(series("WTI", values), models.DefaultAlertRules())
	if len(alerts) == 0 || alerts[0].Severity != models.SeverityMedium || alerts[0].Value >= 0 {
		t.Fatalf("expected a medium decrease alert, got %+v", alerts)
	}
}

func TestCheckVolatility(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100
		if i%2 == 1 {
			values[i] = 110
		}
	}
	alerts := CheckVolatility(series("Brent", values), models.DefaultAlertRules())
	if len(alerts) != 1 || alerts[0].Severity != models.SeverityHigh {
		t.Fatalf("expected a high volatility alert, got %+v", alerts)
	}
	if alerts := CheckVolatility(series("Brent", sideways(10, 100)), models.DefaultAlertRules()); alerts != nil {
		t.Fatalf("short series should not alert: %+v", alerts)
	}
}

func TestCheckRSI(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 50 + float64(i)*0.5
	}
	alerts := CheckRSI(series("WTI", values), models.DefaultAlertRules())
	if len(alerts) != 1 || alerts[0].Value != 100 {
		t.Fatalf("expected overbought alert, got %+v", alerts)
	}
	rules := models.DefaultAlertRules()
	rules.RSIOverbought = 101
	if alerts := CheckRSI(series("WTI", values), rules); alerts != nil {
		t.Fatalf("expected no alert above raised threshold, got %+v", alerts)
	}
}

func TestCheckMACrossover(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 - float64(i)*0.5
	}
	values[59] = 200
	alerts := CheckMACrossover(series("WTI", values), models.DefaultAlertRules())
	if len(alerts) != 1 || alerts[0].Value != 1 {
		t.Fatalf("expected bullish crossover, got %+v", alerts)
	}

	rules := models.DefaultAlertRules()
	rules.MovingAverageCross = false
	if alerts := CheckMACrossover(series("WTI", values), rules); alerts != nil {
		t.Fatalf("disabled rule fired: %+v", alerts)
	}
	if alerts := CheckMACrossover(series("WTI", values[11:]), models.DefaultAlertRules()); alerts != nil {
		t.Fatalf("fewer than 50 observations fired: %+v", alerts)
	}
}

func TestCheckBollinger(t *testing.T) {
	values := sideways(30, 80)
	values[29] = 95
	alerts := CheckBollinger(series("Brent", values), models.DefaultAlertRules())
	if len(alerts) != 1 || alerts[0].Value <= 0 {
		t.Fatalf("expected upper band breach, got %+v", alerts)
	}
	flat := make([]float64, 25)
	for i := range flat {
		flat[i] = 100
	}
	if alerts := CheckBollinger(series("Brent", flat), models.DefaultAlertRules()); alerts != nil {
		t.Fatalf("price on the band is not a breach: %+v", alerts)
	}
}

func TestCheckCorrelation(t *testing.T) {
	a := sideways(40, 70)
	b := make([]float64, 40)
	for i, v := range a {
		b[i] = 200 - 2*v
	}
	alerts := CheckCorrelation(series("WTI", a), series("Natural Gas", b))
	if len(alerts) != 1 || alerts[0].Severity != models.SeverityMedium || alerts[0].Commodity != "WTI-Natural Gas" {
		t.Fatalf("expected negative correlation alert, got %+v", alerts)
	}
	if alerts := CheckCorrelation(series("WTI", a[:9]), series("Natural Gas", b[:9])); alerts != nil {
		t.Fatalf("fewer than 10 aligned points fired: %+v", alerts)
	}
}

func TestGenerateAllOrdering(t *testing.T) {
	wti := sideways(60, 70)
	wti[59] = wti[58] * 1.15
	gas := make([]float64, 60)
	for i, v := range wti {
		gas[i] = v / 20
	}
	e := newTestEngine()
	batch := e.GenerateAll(map[string]models.PriceSeries{
		"WTI":         series("WTI", wti),
		"Natural Gas": series("Natural Gas", gas),
	})
	if len(batch) == 0 {
		t.Fatalf("expected alerts")
	}
	var sawLow bool
	for i, a := range batch {
		if a.ID == "" || !a.Timestamp.Equal(now) {
			t.Fatalf("alert %d not stamped: %+v", i, a)
		}
		if i > 0 && batch[i-1].Severity.Rank() > a.Severity.Rank() {
			t.Fatalf("alert %d (%s) follows %s", i, a.Severity, batch[i-1].Severity)
		}
		if a.Type == models.AlertCorrelation && a.Severity == models.SeverityLow {
			sawLow = true
		}
	}
	if batch[0].Severity != models.SeverityHigh || !sawLow {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if len(e.History()) != len(batch) {
		t.Fatalf("history has %d alerts, batch %d", len(e.History()), len(batch))
	}
}

func TestHistoryCap(t *testing.T) {
	e := NewEngine(Config{HistoryCap: 5, Rules: models.DefaultAlertRules()},
		WithEvaluators(func(s models.PriceSeries, _ models.AlertRules) []models.AlertRecord {
			return []models.AlertRecord{{Type: models.AlertPriceChange, Severity: models.SeverityLow, Commodity: s.Name}}
		}))
	for i := 0; i < 4; i++ {
		e.GenerateAll(map[string]models.PriceSeries{
			"a": series("a", []float64{1, 2}),
			"b": series("b", []float64{1, 2}),
		})
	}
	if got := len(e.History()); got != 5 {
		t.Fatalf("history length = %d, want 5", got)
	}
}

func TestSummaryWindow(t *testing.T) {
	e := newTestEngine()
	e.history = []models.AlertRecord{
		{Type: models.AlertVolatility, Severity: models.SeverityLow, Timestamp: now.Add(-48 * time.Hour)},
		{Type: models.AlertPriceChange, Severity: models.SeverityHigh, Timestamp: now.Add(-time.Hour)},
	}
	s := e.Summary(24)
	if s.Total != 1 || s.High != 1 || s.Medium != 0 || s.Low != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.ByType[models.AlertPriceChange] != 1 || len(s.ByType) != 1 {
		t.Fatalf("unexpected by-type counts %+v", s.ByType)
	}
}

func TestUpdateRulesMerges(t *testing.T) {
	e := newTestEngine()
	ignored, err := e.ApplyRuleMap(map[string]any{"rsiOverbought": 80, "volumeThreshold": 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.DefaultAlertRules()
	want.RSIOverbought = 80
	if got := e.Rules(); got != want {
		t.Fatalf("rules = %+v, want %+v", got, want)
	}
	if len(ignored) != 1 || ignored[0] != "volumeThreshold" {
		t.Fatalf("ignored = %v", ignored)
	}
	if _, err := e.ApplyRuleMap(map[string]any{"movingAverageCross": 3}); err == nil {
		t.Fatalf("expected type error")
	}
	if e.Rules() != want {
		t.Fatalf("failed update changed rules")
	}
}
