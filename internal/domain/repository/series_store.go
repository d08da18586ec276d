package repository

import (
	"context"
	"time"

	"EnergyPulse/internal/domain/models"
)

// SeriesStore provides read-only access to daily commodity closes.
type SeriesStore interface {
	GetSeries(ctx context.Context, commodity string, from, to time.Time) (models.PriceSeries, error)
	GetLatestN(ctx context.Context, commodity string, n int) (models.PriceSeries, error)
	Commodities(ctx context.Context) ([]string, error)
}
