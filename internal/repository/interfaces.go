// Package repository provides PostgreSQL data access for price bars and
// pipeline run records.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/aegisquant/internal/models"
)

// PriceRepository defines the interface for daily price bar data access
type PriceRepository interface {
	UpsertBatch(ctx context.Context, symbol string, bars []models.PriceBar) error
	GetBySymbol(ctx context.Context, symbol string) ([]models.PriceBar, error)
	GetBySymbolRange(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
	GetLatestDate(ctx context.Context, symbol string) (time.Time, error)
	DeleteSymbol(ctx context.Context, symbol string) error
}

// RunRepository defines the interface for pipeline run record data access
type RunRepository interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	Update(ctx context.Context, run *models.PipelineRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error)
	GetRecent(ctx context.Context, symbol string, limit int) ([]*models.PipelineRun, error)
}
