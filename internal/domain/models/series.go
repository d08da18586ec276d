package models

import (
	"fmt"
	"time"
)

// PricePoint is a single daily observation.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries is an ordered sequence of observations for one commodity.
// Timestamps are strictly increasing. Gaps (weekends, holidays) are allowed.
// Components treat a series as read-only; Append returns a new series.
type PriceSeries struct {
	Name   string       `json:"name"`
	Points []PricePoint `json:"points"`
}

// NewPriceSeries builds a series from parallel slices and validates ordering.
func NewPriceSeries(name string, times []time.Time, prices []float64) (PriceSeries, error) {
	if len(times) != len(prices) {
		return PriceSeries{}, fmt.Errorf("series %s: %d timestamps for %d prices", name, len(times), len(prices))
	}
	points := make([]PricePoint, len(times))
	for i := range times {
		points[i] = PricePoint{Time: times[i], Price: prices[i]}
	}
	s := PriceSeries{Name: name, Points: points}
	if err := s.Validate(); err != nil {
		return PriceSeries{}, err
	}
	return s, nil
}

// Validate reports the first ordering violation.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("series %s: timestamp %s at index %d is not after %s",
				s.Name, s.Points[i].Time.Format(time.DateOnly), i, s.Points[i-1].Time.Format(time.DateOnly))
		}
	}
	return nil
}

func (s PriceSeries) Len() int { return len(s.Points) }

// Values returns a copy of the prices.
func (s PriceSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Times returns a copy of the timestamps.
func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// Last returns the newest observation.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Tail returns the newest n observations sharing no storage with s.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= len(s.Points) {
		n = len(s.Points)
	}
	if n < 0 {
		n = 0
	}
	points := make([]PricePoint, n)
	copy(points, s.Points[len(s.Points)-n:])
	return PriceSeries{Name: s.Name, Points: points}
}

// Append returns a new series with p added at the end.
func (s PriceSeries) Append(p PricePoint) PriceSeries {
	points := make([]PricePoint, len(s.Points), len(s.Points)+1)
	copy(points, s.Points)
	return PriceSeries{Name: s.Name, Points: append(points, p)}
}

// Slice returns the observations with from <= Time <= to.
func (s PriceSeries) Slice(from, to time.Time) PriceSeries {
	out := PriceSeries{Name: s.Name}
	for _, p := range s.Points {
		if p.Time.Before(from) || p.Time.After(to) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}
