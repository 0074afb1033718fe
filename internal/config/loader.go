// Package config provides configuration management for the AegisQuant application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("AEGISQUANT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, so a missing config file still yields a runnable snapshot-only
// setup. It expands environment variable placeholders (${VAR_NAME}).
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix("AEGISQUANT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "aegisquant")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)

	v.SetDefault("snapshot.dir", "data/snapshots")

	v.SetDefault("data_source.name", "stooq")
	v.SetDefault("data_source.enabled", true)
	v.SetDefault("data_source.rate_limit_rps", 2.0)
	v.SetDefault("data_source.max_retries", 5)

	v.SetDefault("pipeline.symbols", []string{"SPY"})
	v.SetDefault("pipeline.start_date", "2015-01-01")
	v.SetDefault("pipeline.features.vol_window", 20)
	v.SetDefault("pipeline.features.mom_window", 60)
	v.SetDefault("pipeline.regime.z_window", 252)
	v.SetDefault("pipeline.regime.steepness", 1.25)
	v.SetDefault("pipeline.regime.threshold", 0.7)
	v.SetDefault("pipeline.backtest.threshold", 0.7)
	v.SetDefault("pipeline.backtest.cost_bps", 5.0)
	v.SetDefault("pipeline.backtest.limit", 1500)
	v.SetDefault("pipeline.cache_ttl_seconds", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.daily_run", "0 30 22 * * *")
	v.SetDefault("scheduler.max_parallel", 2)
}

// ReloadFromEnv reloads the full configuration when an override path is set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("AEGISQUANT_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
