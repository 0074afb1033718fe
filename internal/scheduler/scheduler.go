package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/aegisquant/internal/metrics"
	"github.com/yourusername/aegisquant/internal/service"
)

// Scheduler manages the daily pipeline refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	pipelineSvc     *service.PipelineService
	logger          *log.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	maxParallel     int
	refreshTimeout  time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Cron expressions use six fields
// with a leading seconds column, evaluated in UTC.
func NewScheduler(pipelineSvc *service.PipelineService, maxParallel int, logger *log.Logger) *Scheduler {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Scheduler{
		cron:            cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		pipelineSvc:     pipelineSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		maxParallel:     maxParallel,
		refreshTimeout:  30 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleDailyRefresh schedules a full pull/features/regime refresh of
// every configured symbol.
func (s *Scheduler) ScheduleDailyRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.refreshAll)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Printf("Scheduled daily refresh job with cron expression: %s", cronExpression)

	return nil
}

// RunNow triggers a full refresh immediately, outside the cron schedule.
func (s *Scheduler) RunNow() {
	s.refreshAll()
}

func (s *Scheduler) refreshAll() {
	symbols := s.pipelineSvc.Symbols()
	metrics.UpdateTrackedSymbols(len(symbols))

	s.logger.Printf("Starting scheduled refresh for %d symbols", len(symbols))
	start := time.Now()

	sem := make(chan struct{}, s.maxParallel)
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
			defer cancel()

			if err := s.pipelineSvc.RefreshSymbol(ctx, symbol); err != nil {
				s.logger.Printf("Error refreshing %s: %v", symbol, err)
			}
		}(symbol)
	}
	wg.Wait()

	s.logger.Printf("Scheduled refresh completed in %s", time.Since(start).Round(time.Millisecond))
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Printf("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// Stop gracefully stops the scheduler, waiting up to the graceful timeout
// for in-flight jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(s.gracefulTimeout):
		s.logger.Printf("Scheduler stop timed out after %s", s.gracefulTimeout)
	}
	s.isRunning = false
	s.logger.Printf("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
