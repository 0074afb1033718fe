package models

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PipelineRun records one execution of a pipeline stage for a symbol.
type PipelineRun struct {
	ID              uuid.UUID  `json:"id"`
	Symbol          string     `json:"symbol"`
	Stage           string     `json:"stage"`
	Status          string     `json:"status"`
	RowCount        *int       `json:"row_count,omitempty"`
	SnapshotVersion *string    `json:"snapshot_version,omitempty"`
	Error           *string    `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewPipelineRun starts a run record for a stage.
func NewPipelineRun(symbol, stage string) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		Symbol:    symbol,
		Stage:     stage,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Complete marks the run as finished successfully.
func (r *PipelineRun) Complete(rowCount int, version string) {
	now := time.Now().UTC()
	r.Status = RunStatusCompleted
	r.RowCount = &rowCount
	r.SnapshotVersion = &version
	r.CompletedAt = &now
}

// Fail marks the run as failed with the given error.
func (r *PipelineRun) Fail(err error) {
	now := time.Now().UTC()
	r.Status = RunStatusFailed
	msg := err.Error()
	r.Error = &msg
	r.CompletedAt = &now
}
