package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Log          LogConfig
	Vault        VaultConfig
	Marketplace  MarketplaceConfig
	Ingest       IngestConfig
	Subscription SubscriptionConfig
	Telemetry    TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	// Timezone is the location calendar days of orders are computed in
	Timezone string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	// SlowQueryThreshold marks queries logged as slow by the gorm logger
	SlowQueryThreshold time.Duration
}

// VaultConfig holds credential encryption keys. Keys maps a version label
// ("1".."255") to its secret; ActiveVersion selects the key new
// ciphertexts are sealed under.
type VaultConfig struct {
	ActiveVersion int
	Keys          map[string]string
}

// MarketplaceConfig holds statistics API client settings
type MarketplaceConfig struct {
	StatisticsURL string
	CommonURL     string
	Timeout       time.Duration
	RetryCount    int
	RetryWait     time.Duration
	UserAgent     string
}

// IngestConfig holds ingestion and sync pass settings
type IngestConfig struct {
	StockChunkSize int
	SaleBatchSize  int
	Workers        int
}

// SubscriptionConfig holds the trial policy
type SubscriptionConfig struct {
	TrialPlan     string
	TrialDuration time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Whether to export traces and metrics
	CollectorEndpoint string        // OTEL Collector gRPC endpoint (e.g., "localhost:4317")
	SamplingRatio     float64       // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string        // Service name for traces and metrics
	Insecure          bool          // Use insecure (non-TLS) connection (development only)
	ExportInterval    time.Duration // Metric export interval
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SELLER_ prefix (e.g., SELLER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SELLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Timezone: v.GetString("app.timezone"),
		},
		Database: DatabaseConfig{
			Host:               v.GetString("database.host"),
			Port:               v.GetInt("database.port"),
			User:               v.GetString("database.user"),
			Password:           v.GetString("database.password"),
			DBName:             v.GetString("database.dbname"),
			SSLMode:            v.GetString("database.sslmode"),
			MaxOpenConns:       v.GetInt("database.max_open_conns"),
			MaxIdleConns:       v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime:    v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime:    v.GetInt("database.conn_max_idle_time"),
			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Vault: VaultConfig{
			ActiveVersion: v.GetInt("vault.active_version"),
			Keys:          v.GetStringMapString("vault.keys"),
		},
		Marketplace: MarketplaceConfig{
			StatisticsURL: v.GetString("marketplace.statistics_url"),
			CommonURL:     v.GetString("marketplace.common_url"),
			Timeout:       v.GetDuration("marketplace.timeout"),
			RetryCount:    v.GetInt("marketplace.retry_count"),
			RetryWait:     v.GetDuration("marketplace.retry_wait"),
			UserAgent:     v.GetString("marketplace.user_agent"),
		},
		Ingest: IngestConfig{
			StockChunkSize: v.GetInt("ingest.stock_chunk_size"),
			SaleBatchSize:  v.GetInt("ingest.sale_batch_size"),
			Workers:        v.GetInt("ingest.workers"),
		},
		Subscription: SubscriptionConfig{
			TrialPlan:     v.GetString("subscription.trial_plan"),
			TrialDuration: v.GetDuration("subscription.trial_duration"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}

	applyDefaults(cfg)

	// SELLER_VAULT_SECRET supplies the active key without a config file
	if secret := v.GetString("vault.secret"); secret != "" {
		if cfg.Vault.Keys == nil {
			cfg.Vault.Keys = make(map[string]string)
		}
		cfg.Vault.Keys[strconv.Itoa(cfg.Vault.ActiveVersion)] = secret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sellerstats"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Europe/Moscow"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "sellerstats"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Vault.ActiveVersion == 0 {
		cfg.Vault.ActiveVersion = 1
	}
	if cfg.Marketplace.StatisticsURL == "" {
		cfg.Marketplace.StatisticsURL = "https://statistics-api.wildberries.ru"
	}
	if cfg.Marketplace.CommonURL == "" {
		cfg.Marketplace.CommonURL = "https://common-api.wildberries.ru"
	}
	if cfg.Marketplace.Timeout == 0 {
		cfg.Marketplace.Timeout = 30 * time.Second
	}
	if cfg.Marketplace.RetryCount == 0 {
		cfg.Marketplace.RetryCount = 2
	}
	if cfg.Marketplace.RetryWait == 0 {
		cfg.Marketplace.RetryWait = 2 * time.Second
	}
	if cfg.Marketplace.UserAgent == "" {
		cfg.Marketplace.UserAgent = "sellerstats/1.0"
	}
	if cfg.Ingest.StockChunkSize == 0 {
		cfg.Ingest.StockChunkSize = 500
	}
	if cfg.Ingest.SaleBatchSize == 0 {
		cfg.Ingest.SaleBatchSize = 500
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 8
	}
	if cfg.Subscription.TrialPlan == "" {
		cfg.Subscription.TrialPlan = "trial"
	}
	if cfg.Subscription.TrialDuration == 0 {
		cfg.Subscription.TrialDuration = 7 * 24 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "sellerstats-sync"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 15 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone %q is invalid: %w", c.App.Timezone, err)
	}

	if c.Vault.ActiveVersion < 1 || c.Vault.ActiveVersion > 255 {
		return fmt.Errorf("vault.active_version must be between 1 and 255, got %d", c.Vault.ActiveVersion)
	}

	if c.Ingest.StockChunkSize < 0 {
		return fmt.Errorf("ingest.stock_chunk_size must be positive")
	}
	if c.Ingest.SaleBatchSize < 0 {
		return fmt.Errorf("ingest.sale_batch_size must be positive")
	}
	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must be positive")
	}
	if c.Marketplace.RetryCount < 0 {
		return fmt.Errorf("marketplace.retry_count cannot be negative")
	}
	if c.Subscription.TrialDuration < 0 {
		return fmt.Errorf("subscription.trial_duration cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if _, ok := c.Vault.Keys[strconv.Itoa(c.Vault.ActiveVersion)]; !ok {
			return fmt.Errorf("vault key for active_version %d is required in production", c.Vault.ActiveVersion)
		}
	}

	return nil
}

// Location returns the configured timezone; validate guarantees it loads
func (a *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
