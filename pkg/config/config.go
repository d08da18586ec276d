package config

import (
	"fmt"
	"os"
	"time"

	"EnergyPulse/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Source      SourceConfig     `yaml:"source"`
	Commodities []string         `yaml:"commodities" validate:"required,min=1,dive,required"`
	Forecast    ForecastConfig   `yaml:"forecast"`
	Alerts      AlertsConfig     `yaml:"alerts"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Cache       CacheConfig      `yaml:"cache"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
}

type LogConfig struct {
	Level     string             `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
	Format    string             `yaml:"format" default:"console" validate:"oneof=json console"`
	Output    string             `yaml:"output" default:"stdout" validate:"required"`
	Collector LogCollectorConfig `yaml:"collector"`
}

type LogCollectorConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval" default:"30s"`
	Threshold int           `yaml:"threshold" default:"100" validate:"min=1"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// SourceConfig selects where daily price history is read from.
type SourceConfig struct {
	Type     string `yaml:"type" default:"memory" validate:"oneof=memory clickhouse"`
	Table    string `yaml:"table" default:"energypulse.daily_prices"`
	SeedDemo bool   `yaml:"seed_demo" default:"true"`
	SeedDays int    `yaml:"seed_days" default:"730" validate:"min=0"`
	Seed     uint64 `yaml:"seed" default:"7"`
}

type ForecastConfig struct {
	Model           string        `yaml:"model" default:"random_forest" validate:"oneof=random_forest linear"`
	Horizon         int           `yaml:"horizon" default:"30" validate:"min=1,max=365"`
	Confidence      float64       `yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
	Lookback        int           `yaml:"lookback" default:"365" validate:"min=30"`
	TestFraction    float64       `yaml:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
	MinObservations int           `yaml:"min_observations" default:"30" validate:"min=2"`
	SeedWindow      int           `yaml:"seed_window" default:"60" validate:"min=21"`
	MaxWindow       int           `yaml:"max_window" default:"100" validate:"gtefield=KeepWindow"`
	KeepWindow      int           `yaml:"keep_window" default:"80" validate:"min=21"`
	Trees           int           `yaml:"trees" default:"100" validate:"min=1"`
	MaxDepth        int           `yaml:"max_depth" default:"10" validate:"min=1"`
	Seed            uint64        `yaml:"seed" default:"42"`
	Workers         int           `yaml:"workers" default:"0" validate:"min=0"`
	ArtifactTTL     time.Duration `yaml:"artifact_ttl" default:"1h"`
	ResponseTTL     time.Duration `yaml:"response_ttl" default:"5m"`
}

type AlertsConfig struct {
	Enabled         bool             `yaml:"enabled" default:"true"`
	Schedule        string           `yaml:"schedule" default:"@every 15m"`
	Lookback        int              `yaml:"lookback" default:"120" validate:"min=2"`
	HistoryCap      int              `yaml:"history_cap" default:"1000" validate:"min=1"`
	CorrelationPair []string         `yaml:"correlation_pair" validate:"omitempty,len=2"`
	Rules           AlertRulesConfig `yaml:"rules"`
}

// AlertRulesConfig mirrors the engine's rule set so operators can tune it
// without a rebuild.
type AlertRulesConfig struct {
	PriceChangeThreshold float64 `yaml:"price_change_threshold" default:"5" validate:"gt=0"`
	VolatilityThreshold  float64 `yaml:"volatility_threshold" default:"0.3" validate:"gt=0"`
	RSIOverbought        float64 `yaml:"rsi_overbought" default:"70" validate:"gt=0,lte=100"`
	RSIOversold          float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,ltfield=RSIOverbought"`
	BollingerBandBreach  bool    `yaml:"bollinger_band_breach" default:"true"`
	MovingAverageCross   bool    `yaml:"moving_average_cross" default:"true"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
	AlertsTopic  string   `yaml:"alerts_topic" default:"energypulse.alerts"`
	LogsTopic    string   `yaml:"logs_topic" default:"energypulse.logs"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"50ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"energypulse"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	InitSchema       bool          `yaml:"init_schema" default:"true"`
}

type CacheConfig struct {
	Type  string `yaml:"type" default:"memory" validate:"oneof=memory redis"`
	Redis struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"energypulse:"`
	} `yaml:"redis"`
}

type RateLimitConfig struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     float64 `yaml:"capacity" default:"20" validate:"gt=0"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"2" validate:"gt=0"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file. Missing keys take their
// default tag values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(c.Commodities) == 0 {
		c.Commodities = DefaultCommodities()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENERGYPULSE_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("COMMODITIES"); v != "" {
		c.Commodities = util.SplitList(v)
	}
	if v := getenv("SOURCE_TYPE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Type = "redis"
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Alerts.CorrelationPair) == 2 && c.Alerts.CorrelationPair[0] == c.Alerts.CorrelationPair[1] {
		return fmt.Errorf("alerts.correlation_pair must name two different commodities")
	}
	return nil
}

// CorrelationPair returns the configured pair, falling back to the first two
// commodities.
func (c *Config) CorrelationPair() [2]string {
	if len(c.Alerts.CorrelationPair) == 2 {
		return [2]string{c.Alerts.CorrelationPair[0], c.Alerts.CorrelationPair[1]}
	}
	if len(c.Commodities) >= 2 {
		return [2]string{c.Commodities[0], c.Commodities[1]}
	}
	return [2]string{}
}

func DefaultCommodities() []string {
	return []string{"WTI", "Brent", "Natural Gas"}
}
