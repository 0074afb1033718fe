package datasource

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/aegisquant/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// Stooq daily CSV endpoint source type
	StooqSourceType SourceType = "stooq"
	// Local CSV file source type
	FileSourceType SourceType = "file"
)

// Factory creates PriceSource implementations based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewPriceSource creates the configured price source. Remote sources share
// the provided rate-limited HTTP client.
func (f *Factory) NewPriceSource(cfg config.DataSourceConfig, httpClient *RateLimitedHTTPClient) (PriceSource, error) {
	switch SourceType(cfg.Name) {
	case StooqSourceType:
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for the stooq source")
		}
		return NewStooqClient(httpClient, cfg.Enabled, f.logger), nil

	case FileSourceType:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file source requires a directory")
		}
		return NewFileSource(cfg.Dir, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Name)
	}
}

// NewHTTPClient builds the rate-limited HTTP client from source configuration,
// falling back to defaults for unset fields.
func (f *Factory) NewHTTPClient(cfg config.DataSourceConfig) *RateLimitedHTTPClient {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.RateLimitRPS > 0 {
		httpCfg.RateLimit = cfg.RateLimitRPS
	}
	if cfg.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.MaxRetries
	}
	httpCfg.Timeout = 30 * time.Second
	return NewRateLimitedHTTPClient(httpCfg, f.logger)
}
