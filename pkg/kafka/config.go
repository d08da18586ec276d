package kafka

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// ProducerConfig describes the writer behind a Producer. Zero fields are
// filled from the default tags.
type ProducerConfig struct {
	Brokers      []string      `validate:"required,min=1,dive,hostname_port"`
	RequiredAcks int           `default:"-1" validate:"oneof=-1 0 1"`
	Compression  string        `default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	MaxAttempts  int           `default:"3" validate:"gte=1"`
	WriteTimeout time.Duration `default:"10s"`
	ReadTimeout  time.Duration `default:"10s"`
	BatchSize    int           `default:"100" validate:"gte=1"`
	BatchBytes   int           `default:"1048576" validate:"gte=1"`
	BatchTimeout time.Duration `default:"50ms"`
	Async        bool

	// HashByKey routes every key to a fixed partition so per-commodity
	// ordering holds.
	HashByKey        bool
	AutoCreateTopics bool
}

var validate = validator.New()

func (c *ProducerConfig) normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("producer defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("producer config: %w", err)
	}
	return nil
}
