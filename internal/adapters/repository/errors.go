package repository

import "errors"

// Sentinel kinds for table loading errors.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrMissingColumn   = errors.New("missing required column")
	ErrMalformedRow    = errors.New("malformed row")
)
