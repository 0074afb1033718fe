// Package main provides the entry point for the analytics API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/aegisquant/internal/api"
	"github.com/yourusername/aegisquant/internal/config"
	"github.com/yourusername/aegisquant/internal/database"
	"github.com/yourusername/aegisquant/internal/datasource"
	"github.com/yourusername/aegisquant/internal/health"
	"github.com/yourusername/aegisquant/internal/logger"
	"github.com/yourusername/aegisquant/internal/metrics"
	"github.com/yourusername/aegisquant/internal/repository"
	"github.com/yourusername/aegisquant/internal/scheduler"
	"github.com/yourusername/aegisquant/internal/service"
	"github.com/yourusername/aegisquant/internal/snapshot"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the market regime analytics pipeline over HTTP",
	Long:  `Runs the analytics API server: price snapshot ingestion, feature and regime scoring, regime-conditioned statistics and backtests.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func runServer() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		appLogger.WithField("signal", sig.String()).Info("Shutdown signal received")
		cancel()
	}()

	store, err := snapshot.NewFSStore(cfg.Snapshot.Dir)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open snapshot store")
	}

	factory := datasource.NewFactory(logger.NewStdLogger(appLogger, "datasource"))
	source, err := factory.NewPriceSource(cfg.DataSource, factory.NewHTTPClient(cfg.DataSource))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create price source")
	}

	var db *database.DB
	var repos *repository.Repositories
	if cfg.Database.Enabled {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()

		repos, err = repository.NewRepositories(db)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize repositories")
		}
	} else {
		appLogger.Info("Database disabled; pipeline runs are snapshot-only")
	}

	svc := service.NewPipelineService(cfg.Pipeline, source, store, repos, appLogger)
	metrics.UpdateTrackedSymbols(len(svc.Symbols()))

	healthServer := startHealthServer(ctx, store, db)
	startMetricsServer(ctx)
	sched := startScheduler(svc)

	healthServer.SetReady(true)

	apiServer := api.NewServer(cfg.Server, svc, appLogger)
	if err := apiServer.Start(ctx); err != nil {
		appLogger.WithError(err).Error("API server exited with error")
	}

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLogger.WithError(err).Error("Scheduler stop failed")
		}
	}
	healthServer.SetReady(false)
	if err := healthServer.Shutdown(); err != nil {
		appLogger.WithError(err).Error("Health server shutdown failed")
	}
	appLogger.Info("Server stopped")
}

func startHealthServer(ctx context.Context, store *snapshot.FSStore, db *database.DB) *health.Server {
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLogger,
		Snapshots:   store,
	}
	if db != nil {
		healthCfg.DB = db
	}

	server := health.NewServer(healthCfg)
	if err := server.Start(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to start health server")
	}
	return server
}

func startMetricsServer(ctx context.Context) {
	if !cfg.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	go func() {
		appLogger.WithField("addr", server.Addr).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Error("Metrics server exited with error")
		}
	}()
}

func startScheduler(svc *service.PipelineService) *scheduler.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}

	sched := scheduler.NewScheduler(svc, cfg.Scheduler.MaxParallel, logger.NewStdLogger(appLogger, "scheduler"))
	if err := sched.ScheduleDailyRefresh(cfg.Scheduler.DailyRun); err != nil {
		appLogger.WithError(err).Fatal("Failed to schedule daily refresh")
	}
	if err := sched.Start(); err != nil {
		appLogger.WithError(err).Fatal("Failed to start scheduler")
	}
	if cfg.Scheduler.RunOnStart {
		go sched.RunNow()
	}
	return sched
}
