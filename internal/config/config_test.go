// Package config provides configuration management for the AegisQuant application.
package config

import (
	"os"
	"testing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	expansionConfigMissingPath   = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testMissingVar               = "TEST_MISSING_VAR"
	expandedSecretValue          = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != "aegisquant" {
		t.Errorf("expected app name 'aegisquant', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if len(cfg.Pipeline.Symbols) != 2 || cfg.Pipeline.Symbols[0] != "SPY" {
		t.Errorf("expected pipeline symbols [SPY QQQ], got %v", cfg.Pipeline.Symbols)
	}

	if cfg.Pipeline.Features.VolWindow != 20 || cfg.Pipeline.Features.MomWindow != 60 {
		t.Errorf("expected feature windows 20/60, got %d/%d",
			cfg.Pipeline.Features.VolWindow, cfg.Pipeline.Features.MomWindow)
	}

	if cfg.Pipeline.Regime.ZWindow != 252 {
		t.Errorf("expected regime z_window 252, got %d", cfg.Pipeline.Regime.ZWindow)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("AEGISQUANT_APP_NAME", testAppName)
	defer os.Unsetenv("AEGISQUANT_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadWithDefaults tests that a missing file still yields usable defaults
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected default environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}
	if cfg.Snapshot.Dir == "" {
		t.Error("expected a default snapshot dir")
	}
	if cfg.Pipeline.Regime.Steepness != 1.25 {
		t.Errorf("expected default steepness 1.25, got %v", cfg.Pipeline.Regime.Steepness)
	}
	if cfg.Pipeline.Backtest.CostBps != 5.0 {
		t.Errorf("expected default cost_bps 5.0, got %v", cfg.Pipeline.Backtest.CostBps)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateUnknownDataSource tests validation of an unsupported provider name
func TestValidateUnknownDataSource(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.DataSource.Name = "bloomberg"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for unknown data source")
	}
}

// TestValidateFileSourceRequiresDir tests the file source cross-field rule
func TestValidateFileSourceRequiresDir(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.DataSource.Name = "file"
	cfg.DataSource.Dir = ""
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for file source without dir")
	}

	cfg.DataSource.Dir = "testdata"
	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no error once dir is set, got %v", err)
	}
}

// TestValidateBadCronExpression tests scheduler expression validation
func TestValidateBadCronExpression(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Scheduler.DailyRun = "not a cron line"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for bad cron expression")
	}
}

// TestValidateEmptySymbols tests validation of an empty symbol list
func TestValidateEmptySymbols(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Pipeline.Symbols = []string{}
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for empty symbols")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		t.Fatal("expected non-empty DSN")
	}

	if !containsSubstring(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestIsStaging tests staging environment check
func TestIsStaging(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "staging"},
	}

	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv(testDBPassword, expandedSecretValue)
	defer os.Unsetenv(testDBPassword)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of missing environment variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	os.Unsetenv(testMissingVar)

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// os.ExpandEnv turns an unset ${VAR} into an empty string
	if cfg.Database.Password != "" {
		t.Errorf("expected empty password for unset env var, got %q", cfg.Database.Password)
	}
}

// TestOverlaySecretsOnConfig tests applying a secrets overlay
func TestOverlaySecretsOnConfig(t *testing.T) {
	cfg := &Config{}
	overlaySecretsOnConfig(cfg, &SecretsOverlay{
		DatabasePassword: "s3cret",
		MarketDataAPIKey: "key-123",
	})

	if cfg.Database.Password != "s3cret" {
		t.Errorf("expected database password overlay, got %q", cfg.Database.Password)
	}
	if cfg.DataSource.APIKey != "key-123" {
		t.Errorf("expected data source api key overlay, got %q", cfg.DataSource.APIKey)
	}

	overlaySecretsOnConfig(cfg, &SecretsOverlay{})
	if cfg.Database.Password != "s3cret" {
		t.Error("empty overlay should not clear existing values")
	}
}

// Helper function
func containsSubstring(str, substr string) bool {
	for i := 0; i <= len(str)-len(substr); i++ {
		if str[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
