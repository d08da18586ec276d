package clickhouse

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// ClientConfig describes a ClickHouse connection pool. Zero fields take the
// values in their default tags.
type ClientConfig struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `default:"9000" validate:"gt=0,lte=65535"`
	Database string `default:"default" validate:"required"`
	User     string `default:"default"`
	Password string
	UseHTTP  bool

	MaxOpenConns    int           `default:"10" validate:"gte=1"`
	MaxIdleConns    int           `default:"5" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `default:"5m"`
	DialTimeout     time.Duration `default:"5s"`
	ReadTimeout     time.Duration `default:"10s"`
	WriteTimeout    time.Duration `default:"10s"`
	MaxExecTime     time.Duration
}

var validate = validator.New()

func (c *ClientConfig) normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("clickhouse defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("clickhouse config: %w", err)
	}
	return nil
}
