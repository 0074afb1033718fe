package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/aegisquant/internal/database"
	"github.com/yourusername/aegisquant/internal/models"
)

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new pipeline run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a new pipeline run record
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (id, symbol, stage, status, row_count, snapshot_version, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Symbol, run.Stage, run.Status,
		run.RowCount, run.SnapshotVersion, run.Error, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}

	return nil
}

// Update persists the run's current status fields
func (r *PostgresRunRepository) Update(ctx context.Context, run *models.PipelineRun) error {
	query := `
		UPDATE pipeline_runs
		SET status = $2, row_count = $3, snapshot_version = $4, error = $5, completed_at = $6
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Status, run.RowCount, run.SnapshotVersion, run.Error, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetByID retrieves a pipeline run by ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	query := `
		SELECT id, symbol, stage, status, row_count, snapshot_version, error, started_at, completed_at
		FROM pipeline_runs WHERE id = $1
	`

	run := &models.PipelineRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Symbol, &run.Stage, &run.Status,
		&run.RowCount, &run.SnapshotVersion, &run.Error, &run.StartedAt, &run.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline run: %w", err)
	}

	return run, nil
}

// GetRecent retrieves the most recent runs for a symbol, newest first
func (r *PostgresRunRepository) GetRecent(ctx context.Context, symbol string, limit int) ([]*models.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, symbol, stage, status, row_count, snapshot_version, error, started_at, completed_at
		FROM pipeline_runs WHERE symbol = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent pipeline runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.PipelineRun, 0, limit)
	for rows.Next() {
		run := &models.PipelineRun{}
		err := rows.Scan(&run.ID, &run.Symbol, &run.Stage, &run.Status,
			&run.RowCount, &run.SnapshotVersion, &run.Error, &run.StartedAt, &run.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pipeline runs: %w", err)
	}

	return runs, nil
}
