package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrEmptyInput       = errors.New("empty input series")
	ErrInsufficientData = errors.New("insufficient data for computation")
	ErrNoOverlap        = errors.New("no overlapping dates between series")
	ErrMissingClose     = errors.New("close price is required")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidSymbol    = errors.New("symbol is required")
)
