package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/vanisarees/storefront/pkg/config"
	"github.com/vanisarees/storefront/pkg/database"
	"github.com/vanisarees/storefront/pkg/tracing"
)

// Storage drivers.
const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Catalog sources.
const (
	CatalogPostgres = "postgres"
	CatalogHTTP     = "http"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"0.1.0"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Collection storage
	StorageDriver      string `env:"STORAGE_DRIVER" envDefault:"memory"`
	RedisHost          string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort          int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	SQLitePath         string `env:"SQLITE_PATH" envDefault:"storefront.db"`
	StorageDir         string `env:"STORAGE_DIR" envDefault:"data"`
	CollectionTTLHours int    `env:"COLLECTION_TTL_HOURS" envDefault:"720"`

	// Catalog
	CatalogSource  string `env:"CATALOG_SOURCE" envDefault:"postgres"`
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001"`
	CatalogPage    int    `env:"CATALOG_PAGE_SIZE" envDefault:"12"`
	HoverDwellMs   int    `env:"HOVER_DWELL_MS" envDefault:"2000"`

	// PostgreSQL catalog database
	DatabaseHost            string `env:"DATABASE_HOST" envDefault:"localhost"`
	DatabasePort            int    `env:"DATABASE_PORT" envDefault:"5432"`
	DatabaseUser            string `env:"DATABASE_USER" envDefault:"storefront"`
	DatabasePassword        string `env:"DATABASE_PASSWORD" envDefault:""`
	DatabaseName            string `env:"DATABASE_NAME" envDefault:"catalog"`
	DatabaseSSLMode         string `env:"DATABASE_SSL_MODE" envDefault:"disable"`
	DatabaseMaxConns        int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns        int32  `env:"DATABASE_MIN_CONNS" envDefault:"2"`
	DatabaseMaxLifetimeMins int    `env:"DATABASE_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	SlowQueryThresholdMs    int    `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Sessions
	SessionIdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and an optional .env
// file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RateLimitRPS < 0 || (c.RateLimitRPS > 0 && c.RateLimitBurst < 1) {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative and RATE_LIMIT_BURST must be positive when limiting")
	}
	if !slices.Contains([]string{StorageRedis, StorageSQLite, StorageFile, StorageMemory}, c.StorageDriver) {
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == StorageSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.StorageDriver == StorageFile && c.StorageDir == "" {
		return fmt.Errorf("STORAGE_DIR is required for the file driver")
	}
	if c.CollectionTTLHours < 0 {
		return fmt.Errorf("COLLECTION_TTL_HOURS must not be negative, got %d", c.CollectionTTLHours)
	}
	switch c.CatalogSource {
	case CatalogPostgres:
		if c.DatabaseHost == "" {
			return fmt.Errorf("DATABASE_HOST is required for the postgres catalog")
		}
	case CatalogHTTP:
		if c.CatalogBaseURL == "" {
			return fmt.Errorf("CATALOG_BASE_URL is required for the http catalog")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.CatalogPage < 1 || c.CatalogPage > 100 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be between 1 and 100, got %d", c.CatalogPage)
	}
	if c.HoverDwellMs < 1 {
		return fmt.Errorf("HOVER_DWELL_MS must be positive, got %d", c.HoverDwellMs)
	}
	if c.SessionIdleTTL <= 0 || c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// HoverDwell returns the preview dwell.
func (c *Config) HoverDwell() time.Duration {
	return time.Duration(c.HoverDwellMs) * time.Millisecond
}

// CollectionTTL returns how long Redis keeps an untouched collection. Zero
// keeps it forever.
func (c *Config) CollectionTTL() time.Duration {
	return time.Duration(c.CollectionTTLHours) * time.Hour
}

// SlowQueryThreshold returns the slow query logging threshold.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// Postgres returns the catalog database settings.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.DatabaseHost,
		Port:            c.DatabasePort,
		User:            c.DatabaseUser,
		Password:        c.DatabasePassword,
		DBName:          c.DatabaseName,
		SSLMode:         c.DatabaseSSLMode,
		MaxConns:        c.DatabaseMaxConns,
		MinConns:        c.DatabaseMinConns,
		MaxConnLifetime: time.Duration(c.DatabaseMaxLifetimeMins) * time.Minute,
	}
}

// Redis returns the collection Redis settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,

		OpTimeout: 3 * time.Second,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}
