// Package config provides configuration management for the AegisQuant application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot" validate:"required"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents optional PostgreSQL persistence configuration.
// When Enabled is false the pipeline runs snapshot-only.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// SnapshotConfig represents the snapshot artifact store configuration
type SnapshotConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// DataSourceConfig represents the market data provider configuration
type DataSourceConfig struct {
	Name         string  `mapstructure:"name" validate:"required,oneof=stooq file"`
	Enabled      bool    `mapstructure:"enabled"`
	APIKey       string  `mapstructure:"api_key"`
	Dir          string  `mapstructure:"dir"`
	RateLimitRPS float64 `mapstructure:"rate_limit_rps" validate:"omitempty,gt=0"`
	MaxRetries   int     `mapstructure:"max_retries" validate:"omitempty,gte=0"`
}

// PipelineConfig represents the analytics pipeline parameters
type PipelineConfig struct {
	Symbols      []string       `mapstructure:"symbols" validate:"required,min=1"`
	StartDate    string         `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	Features     FeatureConfig  `mapstructure:"features" validate:"required"`
	Regime       RegimeConfig   `mapstructure:"regime" validate:"required"`
	Backtest     BacktestConfig `mapstructure:"backtest" validate:"required"`
	CacheTTLSecs int            `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// FeatureConfig represents feature engineering window parameters
type FeatureConfig struct {
	VolWindow int `mapstructure:"vol_window" validate:"required,min=2,max=252"`
	MomWindow int `mapstructure:"mom_window" validate:"required,min=2,max=252"`
}

// RegimeConfig represents regime scoring parameters
type RegimeConfig struct {
	ZWindow   int     `mapstructure:"z_window" validate:"required,min=20,max=1260"`
	Steepness float64 `mapstructure:"steepness" validate:"required,gt=0"`
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=1"`
}

// BacktestConfig represents default backtest parameters
type BacktestConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=1"`
	CostBps   float64 `mapstructure:"cost_bps" validate:"gte=0,lte=200"`
	Limit     int     `mapstructure:"limit" validate:"omitempty,min=1,max=5000"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents the daily refresh scheduler configuration
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DailyRun    string `mapstructure:"daily_run" validate:"required"`
	RunOnStart  bool   `mapstructure:"run_on_start"`
	MaxParallel int    `mapstructure:"max_parallel" validate:"required,gt=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
