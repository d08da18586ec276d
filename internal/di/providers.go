package di

import (
	"context"
	"fmt"
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/domain/repository"
	"EnergyPulse/internal/handler/api"
	"EnergyPulse/internal/handler/ws"
	internalrepo "EnergyPulse/internal/repository"
	"EnergyPulse/internal/scheduler"
	"EnergyPulse/internal/service/cache"
	"EnergyPulse/internal/service/ratelimit"
	"EnergyPulse/internal/services/alerts"
	"EnergyPulse/internal/services/features"
	"EnergyPulse/internal/services/forecasting"
	"EnergyPulse/internal/usecase"
	pkgch "EnergyPulse/pkg/clickhouse"
	"EnergyPulse/pkg/config"
	xhttp "EnergyPulse/pkg/http"
	pkgkafka "EnergyPulse/pkg/kafka"
	applogger "EnergyPulse/pkg/logger"
	"EnergyPulse/pkg/metrics"
	"EnergyPulse/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:          cfg.Kafka.Brokers,
		RequiredAcks:     cfg.Kafka.RequiredAcks,
		Compression:      cfg.Kafka.Compression,
		MaxAttempts:      cfg.Kafka.Producer.MaxAttempts,
		WriteTimeout:     cfg.Kafka.Producer.WriteTimeout,
		ReadTimeout:      cfg.Kafka.Producer.ReadTimeout,
		BatchSize:        cfg.Kafka.Producer.BatchSize,
		BatchBytes:       cfg.Kafka.Producer.BatchBytes,
		BatchTimeout:     cfg.Kafka.Producer.Linger,
		Async:            cfg.Kafka.Producer.Async,
		HashByKey:        true,
		AutoCreateTopics: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the service logger. Errors are also aggregated to the
// logs topic when Kafka and the collector are both enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: "energypulse",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if producer == nil || !cfg.Log.Collector.Enabled {
		return l, func() {}, nil
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   cfg.Log.Collector.Interval,
		CountThreshold: cfg.Log.Collector.Threshold,
		Topic:          cfg.Kafka.LogsTopic,
		Publisher:      producer,
		IncludeWarn:    true,
	})
	return l, l.RemoveCollector, nil
}

// ProvideClickHouseClient connects to ClickHouse when it backs the price
// history, and returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Source.Type != "clickhouse" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(pkgch.ClientConfig{
		Host:         cfg.ClickHouse.Host,
		Port:         cfg.ClickHouse.Port,
		Database:     cfg.ClickHouse.Database,
		User:         cfg.ClickHouse.User,
		Password:     cfg.ClickHouse.Password,
		UseHTTP:      cfg.ClickHouse.UseHTTP,
		DialTimeout:  cfg.ClickHouse.DialTimeout,
		ReadTimeout:  cfg.ClickHouse.ReadTimeout,
		WriteTimeout: cfg.ClickHouse.WriteTimeout,
		MaxExecTime:  cfg.ClickHouse.MaxExecutionTime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, pkgch.DailyPriceSchema(cfg.ClickHouse.Database, cfg.Source.Table)); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideSeriesStore picks the price history backend. Demo random walks are
// seeded into an empty store when enabled.
func ProvideSeriesStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.SeriesStore, error) {
	end := time.Now().UTC()
	if ch == nil {
		store := internalrepo.NewMemorySeriesStore()
		if cfg.Source.SeedDemo {
			if err := store.SeedRandomWalk(cfg.Commodities, cfg.Source.SeedDays, end, cfg.Source.Seed); err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
			l.Info("memory store seeded",
				applogger.Strings("commodities", cfg.Commodities),
				applogger.Int("days", cfg.Source.SeedDays),
			)
		}
		return store, nil
	}

	store := internalrepo.NewCHSeriesStore(ch, cfg.Source.Table)
	store.SetLogger(l)
	if !cfg.Source.SeedDemo {
		return store, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	have, err := store.Commodities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	if len(have) > 0 {
		return store, nil
	}
	for _, name := range cfg.Commodities {
		s := internalrepo.RandomWalkSeries(name, cfg.Source.SeedDays, end, cfg.Source.Seed)
		if err := store.InsertPrices(ctx, name, s.Points); err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
	}
	l.Info("clickhouse store seeded", applogger.Strings("commodities", cfg.Commodities), applogger.String("table", cfg.Source.Table))
	return store, nil
}

// ProvideAlertPublisher publishes to Kafka when a producer exists.
func ProvideAlertPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.AlertPublisher {
	if producer == nil {
		return internalrepo.NopAlertPublisher{}
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideResponseCache returns the forecast response cache: Redis when
// configured, in-process otherwise.
func ProvideResponseCache(cfg *config.Config) (cache.BytesCache, func(), error) {
	if cfg.Cache.Type != "redis" {
		return cache.NewTTLCache(), func() {}, nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ArtifactCache holds trained models in process.
type ArtifactCache struct{ *cache.TTLCache }

func ProvideArtifactCache() ArtifactCache {
	return ArtifactCache{cache.NewTTLCache()}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

func ProvidePipeline() *features.Pipeline {
	return features.NewPipeline(features.DefaultConfig())
}

func ProvideTrainer(cfg *config.Config, p *features.Pipeline) *forecasting.Trainer {
	return forecasting.NewTrainer(forecasting.TrainerConfig{
		MinObservations: cfg.Forecast.MinObservations,
		TestFraction:    cfg.Forecast.TestFraction,
		Forest: forecasting.ForestConfig{
			Trees:    cfg.Forecast.Trees,
			MaxDepth: cfg.Forecast.MaxDepth,
			MinSplit: forecasting.DefaultForestConfig().MinSplit,
			Seed:     cfg.Forecast.Seed,
			Workers:  cfg.Forecast.Workers,
		},
	}, p)
}

func ProvideForecaster(cfg *config.Config, p *features.Pipeline) *forecasting.Forecaster {
	return forecasting.NewForecaster(forecasting.ForecasterConfig{
		SeedWindow: cfg.Forecast.SeedWindow,
		MaxWindow:  cfg.Forecast.MaxWindow,
		KeepWindow: cfg.Forecast.KeepWindow,
	}, p)
}

// AlertRulesFromConfig maps the YAML rule block onto the engine's rule set.
func AlertRulesFromConfig(c config.AlertRulesConfig) models.AlertRules {
	return models.AlertRules{
		PriceChangeThreshold: c.PriceChangeThreshold,
		VolatilityThreshold:  c.VolatilityThreshold,
		RSIOverbought:        c.RSIOverbought,
		RSIOversold:          c.RSIOversold,
		BollingerBandBreach:  c.BollingerBandBreach,
		MovingAverageCross:   c.MovingAverageCross,
	}
}

func ProvideAlertEngine(cfg *config.Config) *alerts.Engine {
	return alerts.NewEngine(alerts.Config{
		Rules:           AlertRulesFromConfig(cfg.Alerts.Rules),
		HistoryCap:      cfg.Alerts.HistoryCap,
		CorrelationPair: cfg.CorrelationPair(),
	})
}

func ProvideForecastUseCase(
	cfg *config.Config,
	store repository.SeriesStore,
	trainer *forecasting.Trainer,
	forecaster *forecasting.Forecaster,
	artifacts ArtifactCache,
	responses cache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(store, trainer, forecaster, artifacts.TTLCache, responses, m, l,
		usecase.ForecastOptions{ArtifactTTL: cfg.Forecast.ArtifactTTL, ResponseTTL: cfg.Forecast.ResponseTTL})
}

// ProvideAlertsUseCase wires the engine to the publisher and the websocket hub.
func ProvideAlertsUseCase(
	cfg *config.Config,
	engine *alerts.Engine,
	store repository.SeriesStore,
	pub repository.AlertPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	hub *ws.Hub,
) *usecase.AlertsUseCase {
	uc := usecase.NewAlertsUseCase(engine, store, pub, m, l, cfg.Commodities, cfg.Alerts.Lookback)
	uc.AddSink(hub)
	return uc
}

func ProvideAnalysisUseCase(cfg *config.Config, store repository.SeriesStore, l *applogger.Logger) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(store, l, cfg.Commodities)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideScheduler registers the alert sweep and cache housekeeping.
func ProvideScheduler(
	cfg *config.Config,
	l *applogger.Logger,
	alertsUC *usecase.AlertsUseCase,
	artifacts ArtifactCache,
	rl *ratelimit.Limiter,
) (*scheduler.Scheduler, error) {
	s := scheduler.New(l, 5*time.Minute)
	if cfg.Alerts.Enabled {
		if err := s.RegisterAlertSweep(cfg.Alerts.Schedule, alertsUC); err != nil {
			return nil, err
		}
	}
	err := s.Register("housekeeping", "@every 10m", func(context.Context) error {
		purged := artifacts.Purge()
		var forgotten int
		if rl != nil {
			forgotten = rl.Forget(30 * time.Minute)
		}
		l.Debug("housekeeping", applogger.Int("artifacts_purged", purged), applogger.Int("limiters_dropped", forgotten))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideHTTPServer registers every handler and the dependency health checks.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	store repository.SeriesStore,
	responses cache.BytesCache,
	forecastUC *usecase.ForecastUseCase,
	alertsUC *usecase.AlertsUseCase,
	analysisUC *usecase.AnalysisUseCase,
	hub *ws.Hub,
	rl *ratelimit.Limiter,
) *xhttp.Server {
	handlers := []xhttp.Handler{
		api.NewForecastEchoHandler(l, forecastUC, rl),
		api.NewAlertsEchoHandler(l, alertsUC, rl),
		api.NewAnalysisEchoHandler(l, analysisUC, rl),
		hub,
	}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, cfg.Server.SlowThreshold))
	} else {
		opts = append(opts, xhttp.WithMetrics("", cfg.Server.SlowThreshold))
	}
	if h, ok := store.(interface{ Health(context.Context) error }); ok {
		opts = append(opts, xhttp.WithHealthCheck("store", h.Health))
	}
	if rc, ok := responses.(*cache.RedisCache); ok {
		opts = append(opts, xhttp.WithHealthCheck("cache", rc.Ping))
	}
	return xhttp.NewServer(l, handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	sched *scheduler.Scheduler,
	hub *ws.Hub,
	alertsUC *usecase.AlertsUseCase,
) *server.App {
	return server.New(cfg, l, srv, sched, hub, alertsUC)
}
