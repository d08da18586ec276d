package metrics

import (
	"strconv"
	"time"

	"EnergyPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	alertsTotal    *prometheus.CounterVec
	forecastsTotal *prometheus.CounterVec
	forecastSteps  *prometheus.HistogramVec
	trainRMSE      *prometheus.GaugeVec
	trainR2        *prometheus.GaugeVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder bound to reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		alertsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energypulse_alerts_total",
				Help: "Alerts raised by the rule engine",
			},
			[]string{"commodity", "type", "severity"},
		),
		forecastsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energypulse_forecasts_total",
				Help: "Forecast runs by model and outcome",
			},
			[]string{"model", "complete"},
		),
		forecastSteps: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "energypulse_forecast_steps",
				Help:    "Number of steps produced per forecast run",
				Buckets: []float64{1, 7, 14, 30, 60, 90, 180, 365},
			},
			[]string{"model"},
		),
		trainRMSE: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "energypulse_model_test_rmse",
				Help: "Held-out RMSE of the last trained model",
			},
			[]string{"commodity", "model"},
		),
		trainR2: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "energypulse_model_test_r2",
				Help: "Held-out R2 of the last trained model",
			},
			[]string{"commodity", "model"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energypulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "energypulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAlert counts a raised alert.
func (r *Recorder) RecordAlert(commodity string, alertType models.AlertType, severity models.Severity) {
	r.alertsTotal.WithLabelValues(commodity, string(alertType), string(severity)).Inc()
}

// RecordForecast counts a forecast run and its length.
func (r *Recorder) RecordForecast(model models.ModelKind, steps int, complete bool) {
	r.forecastsTotal.WithLabelValues(string(model), strconv.FormatBool(complete)).Inc()
	r.forecastSteps.WithLabelValues(string(model)).Observe(float64(steps))
}

// RecordTraining publishes held-out metrics of a freshly trained model.
func (r *Recorder) RecordTraining(commodity string, model models.ModelKind, test models.ModelMetrics) {
	r.trainRMSE.WithLabelValues(commodity, string(model)).Set(test.RMSE)
	r.trainR2.WithLabelValues(commodity, string(model)).Set(test.R2)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}
