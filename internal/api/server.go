// Package api exposes the pipeline over HTTP with JSON responses.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/aegisquant/internal/config"
	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/service"
)

// Server is the HTTP API server for the analytics pipeline.
type Server struct {
	svc    *service.PipelineService
	logger *logrus.Logger
	server *http.Server
}

// NewServer creates the API server.
func NewServer(cfg config.ServerConfig, svc *service.PipelineService, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /data/pull", s.handleDataPull)
	mux.HandleFunc("GET /data/status", s.handleDataStatus)
	mux.HandleFunc("GET /data/quality", s.handleDataQuality)
	mux.HandleFunc("POST /data/process", s.handleDataProcess)
	mux.HandleFunc("GET /data/features/status", s.handleFeatureStatus)
	mux.HandleFunc("GET /data/features/preview", s.handleFeaturePreview)
	mux.HandleFunc("GET /features/series", s.handleFeatureSeries)
	mux.HandleFunc("POST /regime/run", s.handleRegimeRun)
	mux.HandleFunc("GET /regime/status", s.handleRegimeStatus)
	mux.HandleFunc("GET /regime/preview", s.handleRegimePreview)
	mux.HandleFunc("GET /regime/series", s.handleRegimeSeries)
	mux.HandleFunc("GET /stats/regime", s.handleRegimeStats)
	mux.HandleFunc("POST /backtest/run", s.handleBacktestRun)
	mux.HandleFunc("GET /metrics/summary", s.handleMetricsSummary)

	return s.logRequests(mux)
}

// Start runs the API server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("API server shutdown error")
		}
	}()

	s.logger.WithField("addr", s.server.Addr).Info("API server starting")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	})
}

func (s *Server) handleDataPull(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.PullPrices(r.Context(), r.URL.Query().Get("symbol"))
	s.respond(w, result, err)
}

func (s *Server) handleDataStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.DataStatus(r.Context(), r.URL.Query().Get("symbol"))
	s.respond(w, result, err)
}

func (s *Server) handleDataQuality(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.QualityReport(r.Context(), r.URL.Query().Get("symbol"))
	s.respond(w, result, err)
}

func (s *Server) handleDataProcess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.BuildFeatures(r.Context(), q.Get("symbol"),
		intParam(q.Get("vol_window")), intParam(q.Get("mom_window")))
	s.respond(w, result, err)
}

func (s *Server) handleFeatureStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.FeatureStatus(r.Context(), r.URL.Query().Get("symbol"))
	s.respond(w, result, err)
}

func (s *Server) handleFeaturePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.FeaturePreview(r.Context(), q.Get("symbol"), intParam(q.Get("n")))
	s.respond(w, result, err)
}

func (s *Server) handleFeatureSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.FeatureSeries(r.Context(), q.Get("symbol"), intParam(q.Get("limit")))
	s.respond(w, result, err)
}

func (s *Server) handleRegimeRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.RunRegime(r.Context(), q.Get("symbol"),
		intParam(q.Get("z_window")), floatParam(q.Get("k")))
	s.respond(w, result, err)
}

func (s *Server) handleRegimeStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RegimeStatus(r.Context(), r.URL.Query().Get("symbol"))
	s.respond(w, result, err)
}

func (s *Server) handleRegimePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.RegimePreview(r.Context(), q.Get("symbol"), intParam(q.Get("n")))
	s.respond(w, result, err)
}

func (s *Server) handleRegimeSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.RegimeSeries(r.Context(), q.Get("symbol"), intParam(q.Get("limit")))
	s.respond(w, result, err)
}

func (s *Server) handleRegimeStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	threshold := s.svc.DefaultRegimeThreshold()
	if raw := q.Get("threshold"); raw != "" {
		threshold = floatParam(raw)
	}
	result, err := s.svc.RegimeStats(r.Context(), q.Get("symbol"), threshold)
	s.respond(w, result, err)
}

func (s *Server) handleBacktestRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Absent parameters fall back to configured defaults; an explicit zero
	// keeps its meaning.
	cfg := s.svc.DefaultBacktestConfig()
	if raw := q.Get("threshold"); raw != "" {
		cfg.Threshold = floatParam(raw)
	}
	if raw := q.Get("cost_bps"); raw != "" {
		cfg.CostBps = floatParam(raw)
	}
	if raw := q.Get("limit"); raw != "" {
		cfg.Limit = intParam(raw)
	}

	result, err := s.svc.RunBacktest(r.Context(), q.Get("symbol"), cfg)
	s.respond(w, result, err)
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Summary(r.Context(), r.URL.Query().Get("symbol"))
	s.respond(w, result, err)
}

// respond writes the payload or maps the error onto an HTTP status.
func (s *Server) respond(w http.ResponseWriter, payload interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err == nil {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(payload)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidSymbol):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrSnapshotNotFound), errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrNoOverlap),
		errors.Is(err, models.ErrEmptyInput),
		errors.Is(err, models.ErrMissingClose):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func intParam(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func floatParam(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
