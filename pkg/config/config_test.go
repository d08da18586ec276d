package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 || c.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("server defaults not applied: %+v", c.Server)
	}
	if c.Forecast.Model != "random_forest" || c.Forecast.Horizon != 30 || c.Forecast.Confidence != 0.95 {
		t.Fatalf("forecast defaults not applied: %+v", c.Forecast)
	}
	if c.Forecast.KeepWindow != 80 || c.Forecast.MaxWindow != 100 {
		t.Fatalf("window defaults not applied: %+v", c.Forecast)
	}
	if c.Alerts.Rules.RSIOverbought != 70 || !c.Alerts.Rules.MovingAverageCross {
		t.Fatalf("rule defaults not applied: %+v", c.Alerts.Rules)
	}
	if len(c.Commodities) != 3 || c.Commodities[0] != "WTI" {
		t.Fatalf("commodities=%v", c.Commodities)
	}
	if c.Source.Type != "memory" || c.Cache.Type != "memory" {
		t.Fatalf("source=%s cache=%s", c.Source.Type, c.Cache.Type)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
environment: prod
commodities: [Brent, WTI]
forecast:
  model: linear
  horizon: 14
alerts:
  rules:
    rsi_overbought: 80
`
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Forecast.Model != "linear" || c.Forecast.Horizon != 14 {
		t.Fatalf("forecast=%+v", c.Forecast)
	}
	if c.Alerts.Rules.RSIOverbought != 80 || c.Alerts.Rules.RSIOversold != 30 {
		t.Fatalf("rules=%+v", c.Alerts.Rules)
	}
	if pair := c.CorrelationPair(); pair != [2]string{"Brent", "WTI"} {
		t.Fatalf("pair=%v", pair)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"model":      "forecast:\n  model: arima\n",
		"confidence": "forecast:\n  confidence: 1.5\n",
		"windows":    "forecast:\n  max_window: 50\n",
		"rsi order":  "alerts:\n  rules:\n    rsi_oversold: 75\n",
		"source":     "source:\n  type: csv\n",
		"kafka":      "kafka:\n  enabled: true\n",
		"same pair":  "alerts:\n  correlation_pair: [WTI, WTI]\n",
		"pair size":  "alerts:\n  correlation_pair: [WTI]\n",
		"malformed":  "server: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{
		"ENERGYPULSE_ENV": "staging",
		"COMMODITIES":     "Heating Oil, WTI",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"REDIS_ADDR":      "cache:6379",
		"LOG_LEVEL":       "debug",
	}
	c.applyEnv(func(k string) string { return env[k] })
	if c.Environment != "staging" || c.Log.Level != "debug" {
		t.Fatalf("env=%s level=%s", c.Environment, c.Log.Level)
	}
	if len(c.Commodities) != 2 || c.Commodities[0] != "Heating Oil" {
		t.Fatalf("commodities=%v", c.Commodities)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka=%+v", c.Kafka)
	}
	if c.Cache.Type != "redis" || c.Cache.Redis.Addr != "cache:6379" {
		t.Fatalf("cache=%+v", c.Cache)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadShippedConfig(t *testing.T) {
	path := filepath.Join("..", "..", "config", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("config file not present: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Alerts.Schedule == "" || c.Kafka.AlertsTopic == "" {
		t.Fatalf("unexpected config: %+v", c.Alerts)
	}
}
