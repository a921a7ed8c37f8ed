package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "folio.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// LoadAuth re-reads only the auth settings from YAML and the environment.
// Used for reloading the admin token hash on a running server, so the rest
// of the configuration is not validated again.
func LoadAuth(yamlPath string) (Auth, error) {
	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		return Auth{}, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)
	return cfg.Auth, nil
}

// Overrides holds command-line values that take precedence over every other
// source. Nil fields leave the loaded value untouched.
type Overrides struct {
	Port     *string
	LogLevel *string
	DSN      *string
	NatsURL  *string
	BaseURL  *string
}

// LoadWithOverrides loads the YAML file at yamlPath, overlays the environment
// and then the command-line overrides: defaults < YAML < ENV < flags.
func LoadWithOverrides(yamlPath string, o Overrides) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)
	o.apply(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

func (o Overrides) apply(cfg *Config) {
	if o.Port != nil {
		cfg.Server.Port = *o.Port
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.DSN != nil {
		cfg.Postgres.DSN = *o.DSN
	}
	if o.NatsURL != nil {
		cfg.NATS.URL = *o.NatsURL
	}
	if o.BaseURL != nil {
		cfg.Client.BaseURL = *o.BaseURL
	}
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "FOLIO_PORT")
	setString(&cfg.Server.CORSOrigin, "FOLIO_CORS_ORIGIN")
	setDuration(&cfg.Server.RequestTimeout, "FOLIO_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "FOLIO_SHUTDOWN_TIMEOUT")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "FOLIO_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "FOLIO_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "FOLIO_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "FOLIO_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "FOLIO_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")

	// Cache
	setBool(&cfg.Cache.Enabled, "FOLIO_CACHE_ENABLED")
	setInt64(&cfg.Cache.L1MaxSizeMB, "FOLIO_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.L1TTL, "FOLIO_CACHE_L1_TTL")
	setString(&cfg.Cache.L2Bucket, "FOLIO_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "FOLIO_CACHE_L2_TTL")
	setInt(&cfg.Cache.L2MaxFailures, "FOLIO_CACHE_L2_MAX_FAILURES")
	setDuration(&cfg.Cache.L2Cooldown, "FOLIO_CACHE_L2_COOLDOWN")

	setString(&cfg.Logging.Level, "FOLIO_LOG_LEVEL")
	setString(&cfg.Logging.Service, "FOLIO_LOG_SERVICE")
	setString(&cfg.Logging.Format, "FOLIO_LOG_FORMAT")
	setBool(&cfg.Logging.Async, "FOLIO_LOG_ASYNC")
	setFloat64(&cfg.Rate.RequestsPerSecond, "FOLIO_RATE_RPS")
	setInt(&cfg.Rate.Burst, "FOLIO_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "FOLIO_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "FOLIO_RATE_MAX_IDLE_TIME")
	setString(&cfg.Auth.TokenHash, "FOLIO_ADMIN_TOKEN_HASH")

	// OpenTelemetry
	setBool(&cfg.OTel.Enabled, "FOLIO_OTEL_ENABLED")
	setString(&cfg.OTel.Endpoint, "FOLIO_OTEL_ENDPOINT")
	setBool(&cfg.OTel.Insecure, "FOLIO_OTEL_INSECURE")
	setFloat64(&cfg.OTel.SampleRate, "FOLIO_OTEL_SAMPLE_RATE")

	// Client
	setString(&cfg.Client.BaseURL, "FOLIO_API_URL")
	setString(&cfg.Client.Token, "FOLIO_TOKEN")
	setDuration(&cfg.Client.Timeout, "FOLIO_CLIENT_TIMEOUT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Cache.Enabled && cfg.Cache.L1MaxSizeMB < 1 {
		return errors.New("cache.l1_max_size_mb must be >= 1")
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	if cfg.OTel.SampleRate < 0 || cfg.OTel.SampleRate > 1 {
		return errors.New("otel.sample_rate must be within [0, 1]")
	}
	if cfg.Client.BaseURL == "" {
		return errors.New("client.base_url is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
