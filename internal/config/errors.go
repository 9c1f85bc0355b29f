package config

import "errors"

var (
	// ErrMissingDataDir is returned when no data directory is configured.
	ErrMissingDataDir = errors.New("data directory is required")
)
