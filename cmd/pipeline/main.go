// Package main provides the entry point for the one-shot pipeline CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/aegisquant/internal/backtest"
	"github.com/yourusername/aegisquant/internal/config"
	"github.com/yourusername/aegisquant/internal/datasource"
	"github.com/yourusername/aegisquant/internal/logger"
	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/service"
	"github.com/yourusername/aegisquant/internal/snapshot"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		symbol     = flag.String("symbol", "", "Symbol to process (default: all configured symbols)")
		mode       = flag.String("mode", "refresh", "Mode: pull, features, regime, refresh, stats, backtest, report")
		threshold  = flag.Float64("threshold", -1, "Risk-off threshold override for stats/backtest")
		costBps    = flag.Float64("cost-bps", -1, "Round-trip cost override in basis points")
		output     = flag.String("output", "", "Output path for the backtest equity curve CSV")
	)
	flag.Parse()

	appLogger := newLogger()
	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath, appLogger)
	svc := buildService(cfg, appLogger)

	symbols := svc.Symbols()
	if *symbol != "" {
		symbols = []string{*symbol}
	}
	if len(symbols) == 0 {
		appLogger.Fatal("No symbols configured")
	}

	for _, sym := range symbols {
		runMode(ctx, svc, sym, *mode, *threshold, *costBps, *output, appLogger)
	}
}

func newLogger() *logrus.Logger {
	appLogger := logrus.New()
	appLogger.SetFormatter(&logrus.JSONFormatter{})
	return appLogger
}

func loadConfigWithSecrets(path string, appLogger *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		appLogger.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			appLogger.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			appLogger.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		appLogger.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildService(cfg *config.Config, appLogger *logrus.Logger) *service.PipelineService {
	store, err := snapshot.NewFSStore(cfg.Snapshot.Dir)
	if err != nil {
		appLogger.Fatalf("Failed to open snapshot store: %v", err)
	}

	factory := datasource.NewFactory(logger.NewStdLogger(appLogger, "datasource"))
	source, err := factory.NewPriceSource(cfg.DataSource, factory.NewHTTPClient(cfg.DataSource))
	if err != nil {
		appLogger.Fatalf("Failed to create price source: %v", err)
	}

	// One-shot runs skip the database; snapshots carry the full state.
	return service.NewPipelineService(cfg.Pipeline, source, store, nil, appLogger)
}

func runMode(ctx context.Context, svc *service.PipelineService, symbol, mode string, threshold, costBps float64, output string, appLogger *logrus.Logger) {
	log := appLogger.WithFields(logrus.Fields{"symbol": symbol, "mode": mode})

	switch strings.ToLower(mode) {
	case "pull":
		result, err := svc.PullPrices(ctx, symbol)
		if err != nil {
			log.Fatalf("Pull failed: %v", err)
		}
		log.WithField("rows", result.RowCount).Info("Pull completed")

	case "features":
		result, err := svc.BuildFeatures(ctx, symbol, 0, 0)
		if err != nil {
			log.Fatalf("Feature build failed: %v", err)
		}
		log.WithField("rows", result.RowCount).Info("Feature build completed")

	case "regime":
		result, err := svc.RunRegime(ctx, symbol, 0, 0)
		if err != nil {
			log.Fatalf("Regime scoring failed: %v", err)
		}
		log.WithField("rows", result.RowCount).Info("Regime scoring completed")

	case "refresh":
		if err := svc.RefreshSymbol(ctx, symbol); err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		log.Info("Refresh completed")

	case "stats":
		if threshold < 0 {
			threshold = svc.DefaultRegimeThreshold()
		}
		report, err := svc.RegimeStats(ctx, symbol, threshold)
		if err != nil {
			log.Fatalf("Stats failed: %v", err)
		}
		printStats(symbol, report)

	case "backtest", "report":
		btCfg := svc.DefaultBacktestConfig()
		if threshold >= 0 {
			btCfg.Threshold = threshold
		}
		if costBps >= 0 {
			btCfg.CostBps = costBps
		}
		result, err := svc.RunBacktest(ctx, symbol, btCfg)
		if err != nil {
			log.Fatalf("Backtest failed: %v", err)
		}
		fmt.Printf("\n%s\n%s", symbol, backtest.GenerateConsoleReport(result))
		if output != "" {
			if err := backtest.ExportCurveCSV(result, output); err != nil {
				log.Fatalf("Failed to export equity curve: %v", err)
			}
			log.WithField("output", output).Info("Equity curve exported")
		}

	default:
		log.Fatalf("Unknown mode: %s", mode)
	}
}

func printStats(symbol string, report *models.RegimeStatsReport) {
	fmt.Printf("\n%s regime stats (threshold %.2f, %d usable rows)\n", symbol, report.Threshold, report.UsableRows)
	printBucket("Risk-on", report.RiskOn)
	printBucket("Risk-off", report.RiskOff)
}

func printBucket(label string, b models.RegimeBucketStats) {
	fmt.Printf("%-9s n=%-4d coverage=%.1f%%  ann.return=%s  ann.vol=%s  sharpe=%s\n",
		label, b.SampleCount, b.CoverageFraction*100,
		formatPct(b.AnnualizedReturn), formatPct(b.AnnualizedVolatility), formatRatio(b.SharpeRatio))
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
