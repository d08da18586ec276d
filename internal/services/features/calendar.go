package features

import (
	"math"
	"time"
)

var calendarColumns = []string{
	"day_of_week",
	"day_of_month",
	"month",
	"quarter",
	"year",
	"day_of_year",
	"day_of_week_sin",
	"day_of_week_cos",
	"month_sin",
	"month_cos",
}

// calendarRow encodes t in calendarColumns order. Monday is day 0.
func calendarRow(t time.Time) []float64 {
	dow := float64((int(t.Weekday()) + 6) % 7)
	month := float64(t.Month())
	return []float64{
		dow,
		float64(t.Day()),
		month,
		float64((int(t.Month())-1)/3 + 1),
		float64(t.Year()),
		float64(t.YearDay()),
		math.Sin(2 * math.Pi * dow / 7),
		math.Cos(2 * math.Pi * dow / 7),
		math.Sin(2 * math.Pi * month / 12),
		math.Cos(2 * math.Pi * month / 12),
	}
}

// NextTimestamp is the timestamp that follows t in a forecast: one calendar day later.
func NextTimestamp(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}
