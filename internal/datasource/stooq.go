package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/aegisquant/internal/models"
)

const stooqSourceName = "stooq"

// StooqClient implements PriceSource against the Stooq daily CSV endpoint.
// No API key is required; the rate-limited client keeps requests polite.
type StooqClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     *log.Logger
}

// NewStooqClient creates a new Stooq daily bar client.
func NewStooqClient(httpClient *RateLimitedHTTPClient, enabled bool, logger *log.Logger) *StooqClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StooqClient{
		httpClient: httpClient,
		baseURL:    "https://stooq.com/q/d/l/",
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the name of the data source.
func (c *StooqClient) Name() string { return stooqSourceName }

// IsEnabled returns whether this data source is currently enabled.
func (c *StooqClient) IsEnabled() bool { return c.enabled }

// FetchDailyBars retrieves daily bars from start up to today.
func (c *StooqClient) FetchDailyBars(ctx context.Context, symbol string, start time.Time) ([]models.PriceBar, error) {
	if !c.enabled {
		return nil, NewSourceError(stooqSourceName, ErrCodeDisabled, "data source is disabled", nil)
	}

	url := fmt.Sprintf("%s?s=%s&d1=%s&d2=%s&i=d",
		c.baseURL, stooqTicker(symbol), start.Format("20060102"), time.Now().UTC().Format("20060102"))

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewSourceError(stooqSourceName, ErrCodeNetworkError, "failed to fetch daily bars", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(stooqSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewSourceError(stooqSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	bars, err := ParseDailyCSV(resp.Body)
	if err != nil {
		return nil, NewSourceError(stooqSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	if len(bars) == 0 {
		return nil, NewSourceError(stooqSourceName, ErrCodeNotFound,
			fmt.Sprintf("no data returned for symbol=%s start=%s", symbol, start.Format(models.DateLayout)), nil)
	}

	c.logger.Printf("Fetched %d daily bars for %s", len(bars), symbol)
	return bars, nil
}

// stooqTicker maps a plain US ticker onto Stooq's naming (spy -> spy.us).
// Symbols already carrying a market suffix pass through unchanged.
func stooqTicker(symbol string) string {
	ticker := strings.ToLower(strings.TrimSpace(symbol))
	if !strings.Contains(ticker, ".") {
		ticker += ".us"
	}
	return ticker
}

// ParseDailyCSV decodes a Date,Open,High,Low,Close[,Adj Close][,Volume]
// CSV stream into price bars. Prices travel through decimals so values
// like 110.25 survive parsing exactly; unparseable fields become absent
// rather than zero. Rows without a date or a close are dropped.
func ParseDailyCSV(r io.Reader) ([]models.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[normalizeColumn(name)] = i
	}
	dateIdx, ok := columns["date"]
	if !ok {
		return nil, fmt.Errorf("csv is missing a date column: %v", records[0])
	}

	bars := make([]models.PriceBar, 0, len(records)-1)
	for _, record := range records[1:] {
		if dateIdx >= len(record) {
			continue
		}
		date, err := time.Parse(models.DateLayout, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			continue
		}
		bar := models.PriceBar{
			Date:     date,
			Open:     parsePrice(record, columns, "open"),
			High:     parsePrice(record, columns, "high"),
			Low:      parsePrice(record, columns, "low"),
			Close:    parsePrice(record, columns, "close"),
			AdjClose: parsePrice(record, columns, "adj_close"),
			Volume:   parsePrice(record, columns, "volume"),
		}
		if bar.Close == nil {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func parsePrice(record []string, columns map[string]int, name string) *float64 {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return nil
	}
	raw := strings.TrimSpace(record[idx])
	if raw == "" || strings.EqualFold(raw, "n/a") || raw == "-" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	value, _ := d.Float64()
	return &value
}
