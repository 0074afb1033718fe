package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/aegisquant/internal/database"
	"github.com/yourusername/aegisquant/internal/models"
)

const errScanPriceBar = "failed to scan price bar: %w"

// PostgresPriceRepository implements PriceRepository for PostgreSQL
type PostgresPriceRepository struct {
	db *database.DB
}

// NewPostgresPriceRepository creates a new price bar repository
func NewPostgresPriceRepository(db *database.DB) PriceRepository {
	return &PostgresPriceRepository{db: db}
}

// UpsertBatch inserts or updates a batch of daily bars for a symbol.
// Re-pulling a date range overwrites the stored bars for those dates.
func (r *PostgresPriceRepository) UpsertBatch(ctx context.Context, symbol string, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_bars (symbol, bar_date, open, high, low, close, adj_close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, bar_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			adj_close = EXCLUDED.adj_close,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query, symbol, bar.Date,
			bar.Open, bar.High, bar.Low, bar.Close, bar.AdjClose, bar.Volume)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert price bars: %w", err)
		}
	}

	return nil
}

// GetBySymbol retrieves all stored bars for a symbol ordered by date
func (r *PostgresPriceRepository) GetBySymbol(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	query := `
		SELECT bar_date, open, high, low, close, adj_close, volume
		FROM price_bars WHERE symbol = $1
		ORDER BY bar_date
	`

	rows, err := r.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get price bars: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows, symbol)
}

// GetBySymbolRange retrieves bars for a symbol within [start, end] ordered by date
func (r *PostgresPriceRepository) GetBySymbolRange(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	query := `
		SELECT bar_date, open, high, low, close, adj_close, volume
		FROM price_bars
		WHERE symbol = $1 AND bar_date >= $2 AND bar_date <= $3
		ORDER BY bar_date
	`

	rows, err := r.db.GetPool().Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get price bars by range: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows, symbol)
}

// GetLatestDate returns the most recent stored bar date for a symbol
func (r *PostgresPriceRepository) GetLatestDate(ctx context.Context, symbol string) (time.Time, error) {
	query := `SELECT MAX(bar_date) FROM price_bars WHERE symbol = $1`

	var latest *time.Time
	err := r.db.GetPool().QueryRow(ctx, query, symbol).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest bar date: %w", err)
	}
	if latest == nil {
		return time.Time{}, fmt.Errorf("%w: no bars stored for %s", models.ErrNotFound, symbol)
	}

	return *latest, nil
}

// DeleteSymbol removes all stored bars for a symbol
func (r *PostgresPriceRepository) DeleteSymbol(ctx context.Context, symbol string) error {
	if _, err := r.db.GetPool().Exec(ctx, `DELETE FROM price_bars WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("failed to delete price bars: %w", err)
	}
	return nil
}

func scanPriceBars(rows pgx.Rows, symbol string) ([]models.PriceBar, error) {
	bars := make([]models.PriceBar, 0, 256)
	for rows.Next() {
		var bar models.PriceBar
		err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low,
			&bar.Close, &bar.AdjClose, &bar.Volume)
		if err != nil {
			return nil, fmt.Errorf(errScanPriceBar, err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars stored for %s", models.ErrNotFound, symbol)
	}
	return bars, nil
}
