package features

import (
	"math"
	"reflect"
	"testing"
	"time"

	"EnergyPulse/internal/domain/models"
)

func testSeries(n int) models.PriceSeries {
	s := models.PriceSeries{Name: "WTI"}
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 80 + 3*math.Sin(float64(i)/4) + 0.05*float64(i)
		s.Points = append(s.Points, models.PricePoint{Time: start.AddDate(0, 0, i), Price: price})
	}
	return s
}

func TestPrepareFeaturesDropsWarmup(t *testing.T) {
	s := testSeries(60)
	m := PrepareFeatures(s)
	if m.Len() != 41 {
		t.Fatalf("expected 41 rows after warm-up, got %d", m.Len())
	}
	if !m.Times[0].Equal(s.Points[19].Time) {
		t.Fatalf("first row at %v, want %v", m.Times[0], s.Points[19].Time)
	}
	if len(m.Columns) != 27 {
		t.Fatalf("expected 27 columns, got %d", len(m.Columns))
	}
	for i, row := range m.Rows {
		if len(row) != len(m.Columns) {
			t.Fatalf("row %d has %d values", i, len(row))
		}
	}
}

func TestPrepareFeaturesValues(t *testing.T) {
	s := testSeries(40)
	m := PrepareFeatures(s)
	_, row, ok := m.Last()
	if !ok {
		t.Fatalf("expected rows")
	}
	prices := s.Values()
	last := len(prices) - 1
	if got := row[m.Index("lag_1")]; got != prices[last-1] {
		t.Fatalf("lag_1 = %v, want %v", got, prices[last-1])
	}
	if got := row[m.Index("lag_14")]; got != prices[last-14] {
		t.Fatalf("lag_14 = %v, want %v", got, prices[last-14])
	}
	if got := m.Target[m.Len()-1]; got != prices[last] {
		t.Fatalf("target = %v, want %v", got, prices[last])
	}
	wantPct := prices[last]/prices[last-1] - 1
	if got := row[m.Index("pct_change_1")]; math.Abs(got-wantPct) > 1e-12 {
		t.Fatalf("pct_change_1 = %v, want %v", got, wantPct)
	}
	// 2024-04-12 is a Friday.
	if got := row[m.Index("day_of_week")]; got != 4 {
		t.Fatalf("day_of_week = %v, want 4", got)
	}
	if got := row[m.Index("quarter")]; got != 2 {
		t.Fatalf("quarter = %v, want 2", got)
	}
}

func TestPrepareFeaturesDeterministic(t *testing.T) {
	s := testSeries(80)
	a := PrepareFeatures(s)
	b := PrepareFeatures(s)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical matrices")
	}
}

func TestPrepareFeaturesExtensionKeepsRows(t *testing.T) {
	s := testSeries(70)
	short := PrepareFeatures(s.Tail(70))
	long := PrepareFeatures(s.Append(models.PricePoint{Time: NextTimestamp(s.Points[69].Time), Price: 85}))
	for i := 0; i < short.Len(); i++ {
		if !reflect.DeepEqual(short.Rows[i], long.Rows[i]) {
			t.Fatalf("row %d changed after extension", i)
		}
	}
}

func TestPrepareFeaturesUnknownTargetDropped(t *testing.T) {
	s := testSeries(50)
	last := s.Points[49].Time
	extended := s.Append(models.PricePoint{Time: NextTimestamp(last), Price: math.NaN()})
	m := PrepareFeatures(extended)
	ts, _, _ := m.Last()
	if !ts.Equal(last) {
		t.Fatalf("newest row at %v, want %v", ts, last)
	}
}

func TestPrepareFeaturesConstantSeriesEmpty(t *testing.T) {
	s := models.PriceSeries{Name: "flat"}
	for i := 0; i < 40; i++ {
		s.Points = append(s.Points, models.PricePoint{Time: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC), Price: 10})
	}
	if m := PrepareFeatures(s); !m.Empty() {
		t.Fatalf("expected no rows for a flat series, got %d", m.Len())
	}
}

func TestMatrixAlignAndSplit(t *testing.T) {
	m := PrepareFeatures(testSeries(60))
	_, row, _ := m.Last()
	aligned := m.Align(row, []string{"rsi", "unknown", "lag_1"})
	if aligned[0] != row[m.Index("rsi")] || aligned[1] != 0 || aligned[2] != row[m.Index("lag_1")] {
		t.Fatalf("unexpected alignment %v", aligned)
	}
	train, test := m.Split(0.2)
	if train.Len() != 32 || test.Len() != 9 {
		t.Fatalf("split %d/%d", train.Len(), test.Len())
	}
	if !train.Times[train.Len()-1].Before(test.Times[0]) {
		t.Fatalf("split is not chronological")
	}
}

func TestLookback(t *testing.T) {
	if got := NewPipeline(DefaultConfig()).Lookback(); got != 20 {
		t.Fatalf("lookback = %d, want 20", got)
	}
}
