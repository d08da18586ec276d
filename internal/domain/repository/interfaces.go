package repository

import (
	"context"
	"time"

	"EnergyPulse/internal/domain/models"
)

// AlertPublisher ships generated alert batches to downstream consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error
	Close() error
}

// AlertSink receives alert batches in-process (websocket hub, tests).
type AlertSink interface {
	Broadcast(alerts []models.AlertRecord)
}

type Metrics interface {
	RecordAlert(commodity string, alertType models.AlertType, severity models.Severity)
	RecordForecast(model models.ModelKind, steps int, complete bool)
	RecordTraining(commodity string, model models.ModelKind, test models.ModelMetrics)
	RecordError(kind string)
	RecordLatency(op string, d time.Duration)
}
