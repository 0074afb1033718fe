package datasource

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

const fileSourceName = "file"

// FileSource serves daily bars from local CSV files, one file per symbol
// named <symbol>.csv (lower case). Useful offline and as a backfill path.
type FileSource struct {
	dir     string
	enabled bool
	logger  *log.Logger
}

// NewFileSource creates a CSV file-backed price source rooted at dir.
func NewFileSource(dir string, enabled bool, logger *log.Logger) *FileSource {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FileSource{dir: dir, enabled: enabled, logger: logger}
}

// Name returns the name of the data source.
func (s *FileSource) Name() string { return fileSourceName }

// IsEnabled returns whether this data source is currently enabled.
func (s *FileSource) IsEnabled() bool { return s.enabled }

// FetchDailyBars reads the symbol's CSV file and returns bars dated on or
// after start.
func (s *FileSource) FetchDailyBars(ctx context.Context, symbol string, start time.Time) ([]models.PriceBar, error) {
	if !s.enabled {
		return nil, NewSourceError(fileSourceName, ErrCodeDisabled, "data source is disabled", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(symbol)) + ".csv"
	path := filepath.Join(s.dir, name)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(fileSourceName, ErrCodeNotFound,
				fmt.Sprintf("no csv file for symbol %s", symbol), err)
		}
		return nil, NewSourceError(fileSourceName, ErrCodeNetworkError, "failed to open csv file", err)
	}
	defer f.Close()

	bars, err := ParseDailyCSV(f)
	if err != nil {
		return nil, NewSourceError(fileSourceName, ErrCodeInvalidData, "failed to parse csv file", err)
	}

	filtered := bars[:0]
	for _, bar := range bars {
		if !bar.Date.Before(start) {
			filtered = append(filtered, bar)
		}
	}
	if len(filtered) == 0 {
		return nil, NewSourceError(fileSourceName, ErrCodeNotFound,
			fmt.Sprintf("no data for symbol=%s on or after %s", symbol, start.Format(models.DateLayout)), nil)
	}

	s.logger.Printf("Loaded %d daily bars for %s from %s", len(filtered), symbol, path)
	return filtered, nil
}
