package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"EnergyPulse/internal/domain/models"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesOf(name string, values []float64) models.PriceSeries {
	s := models.PriceSeries{Name: name}
	for i, v := range values {
		s.Points = append(s.Points, models.PricePoint{Time: day0.AddDate(0, 0, i), Price: v})
	}
	return s
}

func rising(n int, from, to float64) []float64 {
	out := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func zigzag(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i%4)
	}
	return out
}

func TestMovingAveragesLengthAndWarmup(t *testing.T) {
	values := zigzag(30)
	ma := MovingAverages(values, []int{5, 10, 20, 50})
	for w, col := range ma {
		if len(col) != len(values) {
			t.Fatalf("window %d: length %d, want %d", w, len(col), len(values))
		}
		for i, v := range col {
			warm := i < w-1
			if warm != math.IsNaN(v) {
				t.Fatalf("window %d index %d: got %v", w, i, v)
			}
		}
	}
	// Window 5 at index 4 is the mean of the first five values.
	want := (values[0] + values[1] + values[2] + values[3] + values[4]) / 5
	if math.Abs(ma[5][4]-want) > 1e-9 {
		t.Fatalf("sma(5)[4] = %v, want %v", ma[5][4], want)
	}
}

func TestRSIRisingSeries(t *testing.T) {
	values := rising(40, 50, 70)
	rsi, err := RSI(values, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi <= 70 {
		t.Fatalf("expected overbought rsi, got %v", rsi)
	}
}

func TestRSIBounds(t *testing.T) {
	values := zigzag(80)
	for i, v := range RSISeries(values, 14) {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of range", i, v)
		}
	}
}

func TestRSIEdgeCases(t *testing.T) {
	if _, err := RSI(constant(20, 10), 14); !errors.Is(err, models.ErrDegenerateComputation) {
		t.Fatalf("flat window: got %v", err)
	}
	if _, err := RSI(rising(10, 1, 2), 14); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("short series: got %v", err)
	}
	falling := rising(20, 70, 50)
	rsi, err := RSI(falling, 14)
	if err != nil || rsi != 0 {
		t.Fatalf("falling series: rsi=%v err=%v", rsi, err)
	}
}

func TestBollingerOrdering(t *testing.T) {
	b, err := BollingerBands(zigzag(60), 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 19; i < 60; i++ {
		if !(b.Upper[i] >= b.Middle[i] && b.Middle[i] >= b.Lower[i]) {
			t.Fatalf("row %d: %v %v %v", i, b.Upper[i], b.Middle[i], b.Lower[i])
		}
	}
	if !math.IsNaN(b.Upper[18]) {
		t.Fatalf("expected warm-up slot to be NaN")
	}
}

func TestConstantSeries(t *testing.T) {
	values := constant(25, 100)

	vol, err := Volatility(values, 20)
	if err != nil || vol != 0 {
		t.Fatalf("volatility = %v, err = %v", vol, err)
	}

	b, err := BollingerBands(values, 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, upper, lower := b.Last()
	if upper != 100 || lower != 100 {
		t.Fatalf("bands = %v / %v, want 100", upper, lower)
	}

	other := seriesOf("b", constant(25, 42))
	if _, err := Correlation(seriesOf("a", values), other); !errors.Is(err, models.ErrDegenerateComputation) {
		t.Fatalf("expected degenerate correlation, got %v", err)
	}
}

func TestCorrelationLinear(t *testing.T) {
	a := zigzag(40)
	b := make([]float64, len(a))
	for i, v := range a {
		b[i] = 2 * v
	}
	r, err := Correlation(seriesOf("a", a), seriesOf("b", b))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(r-1) > 1e-9 {
		t.Fatalf("r = %v, want 1", r)
	}
}

func TestCorrelationOverlap(t *testing.T) {
	a := seriesOf("a", rising(5, 1, 5))
	b := models.PriceSeries{Name: "b"}
	for i := 0; i < 5; i++ {
		b.Points = append(b.Points, models.PricePoint{Time: day0.AddDate(0, 0, 4+i), Price: float64(i)})
	}
	if _, err := Correlation(a, b); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("single overlapping point: got %v", err)
	}
}

func TestDetectTrend(t *testing.T) {
	values := rising(40, 50, 70)
	if got := DetectTrend(values, 5, 10); got != models.TrendUp {
		t.Fatalf("rising: got %s", got)
	}
	if got := DetectTrend(rising(40, 70, 50), 5, 10); got != models.TrendDown {
		t.Fatalf("falling: got %s", got)
	}
	if got := DetectTrend(constant(12, 3), 5, 10); got != models.TrendSideways {
		t.Fatalf("flat: got %s", got)
	}
	if got := DetectTrend(values[:9], 5, 10); got != models.TrendInsufficientData {
		t.Fatalf("short: got %s", got)
	}
}

func TestSupportResistance(t *testing.T) {
	values := []float64{9, 1, 5, 7, 3, 6, 4}
	support, resistance, err := SupportResistance(values, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if support != 3 || resistance != 7 {
		t.Fatalf("got %v / %v", support, resistance)
	}
	if _, _, err := SupportResistance(values, 10); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestPriceChanges(t *testing.T) {
	values := []float64{100, 110, 121}
	changes := PriceChanges(values, []int{1, 7})
	if len(changes) != 1 {
		t.Fatalf("expected only the 1-period change, got %d", len(changes))
	}
	if changes[0].Absolute != 11 || math.Abs(changes[0].Percent-10) > 1e-9 {
		t.Fatalf("unexpected change %+v", changes[0])
	}
}

func TestDetectAnomalies(t *testing.T) {
	values := constant(30, 50)
	values[15] = 90
	anomalies, err := DetectAnomalies(seriesOf("x", values), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].Price != 90 {
		t.Fatalf("unexpected anomalies %+v", anomalies)
	}
}
