// Package config loads settlementd/fxingest runtime configuration from
// environment variables, with viper handling the env binding and defaults.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything cmd/settlementd and cmd/fxingest need to boot.
type Config struct {
	Port          string
	NATSUrl       string
	RedisAddr     string
	EtcdEndpoints []string

	HubBaseURL      string
	HubAuthSecret   string
	FxBaseURL       string
	WorkflowBaseURL string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	CircuitMaxFailures int
	CircuitTimeout     time.Duration
	CircuitHalfOpenMax int

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	RedisClaimTTL   time.Duration
	EtcdDialTimeout time.Duration
	EtcdSessionTTL  time.Duration

	ReportingCurrency  string
	WindowPollInterval time.Duration

	Production bool
}

// Load reads configuration from the environment, applying the same defaults
// a developer's local .env would need to override explicitly.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("ETCD_ENDPOINTS", "localhost:2379")
	v.SetDefault("HUB_BASE_URL", "http://localhost:9000")
	v.SetDefault("HUB_AUTH_SECRET", "dev-secret")
	v.SetDefault("FX_BASE_URL", "http://localhost:9100")
	v.SetDefault("WORKFLOW_BASE_URL", "http://localhost:9200")
	v.SetDefault("READ_TIMEOUT_SECONDS", 30)
	v.SetDefault("WRITE_TIMEOUT_SECONDS", 30)
	v.SetDefault("CIRCUIT_MAX_FAILURES", 5)
	v.SetDefault("CIRCUIT_TIMEOUT_SECONDS", 30)
	v.SetDefault("CIRCUIT_HALF_OPEN_MAX", 3)
	v.SetDefault("INFLUX_URL", "http://localhost:8086")
	v.SetDefault("INFLUX_TOKEN", "")
	v.SetDefault("INFLUX_ORG", "settlementhub")
	v.SetDefault("INFLUX_BUCKET", "settlement_metrics")
	v.SetDefault("REDIS_CLAIM_TTL_SECONDS", 86400)
	v.SetDefault("ETCD_DIAL_TIMEOUT_SECONDS", 5)
	v.SetDefault("ETCD_SESSION_TTL_SECONDS", 30)
	v.SetDefault("REPORTING_CURRENCY", "USD")
	v.SetDefault("WINDOW_POLL_INTERVAL_SECONDS", 30)
	v.SetDefault("PRODUCTION", false)

	return &Config{
		Port:            v.GetString("PORT"),
		NATSUrl:         v.GetString("NATS_URL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		EtcdEndpoints:   strings.Split(v.GetString("ETCD_ENDPOINTS"), ","),
		HubBaseURL:      v.GetString("HUB_BASE_URL"),
		HubAuthSecret:   v.GetString("HUB_AUTH_SECRET"),
		FxBaseURL:       v.GetString("FX_BASE_URL"),
		WorkflowBaseURL: v.GetString("WORKFLOW_BASE_URL"),
		ReadTimeout:     time.Duration(v.GetInt("READ_TIMEOUT_SECONDS")) * time.Second,
		WriteTimeout:    time.Duration(v.GetInt("WRITE_TIMEOUT_SECONDS")) * time.Second,

		CircuitMaxFailures: v.GetInt("CIRCUIT_MAX_FAILURES"),
		CircuitTimeout:     time.Duration(v.GetInt("CIRCUIT_TIMEOUT_SECONDS")) * time.Second,
		CircuitHalfOpenMax: v.GetInt("CIRCUIT_HALF_OPEN_MAX"),

		InfluxURL:    v.GetString("INFLUX_URL"),
		InfluxToken:  v.GetString("INFLUX_TOKEN"),
		InfluxOrg:    v.GetString("INFLUX_ORG"),
		InfluxBucket: v.GetString("INFLUX_BUCKET"),

		RedisClaimTTL:   time.Duration(v.GetInt("REDIS_CLAIM_TTL_SECONDS")) * time.Second,
		EtcdDialTimeout: time.Duration(v.GetInt("ETCD_DIAL_TIMEOUT_SECONDS")) * time.Second,
		EtcdSessionTTL:  time.Duration(v.GetInt("ETCD_SESSION_TTL_SECONDS")) * time.Second,

		ReportingCurrency:  v.GetString("REPORTING_CURRENCY"),
		WindowPollInterval: time.Duration(v.GetInt("WINDOW_POLL_INTERVAL_SECONDS")) * time.Second,

		Production: v.GetBool("PRODUCTION"),
	}
}
