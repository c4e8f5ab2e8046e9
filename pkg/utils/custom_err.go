package utils

import "errors"

var (
	ErrDestinationNotFound = errors.New("destination not found")
	ErrInvalidTopK         = errors.New("invalid top_k parameter")
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrDatabaseError       = errors.New("database error")
)
