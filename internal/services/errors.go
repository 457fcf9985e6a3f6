package services

import (
	"fmt"

	"companylens/pkg/contracts/domain"
)

// Service errors. Lookup failures wrap domain.ErrNotFound and input
// failures wrap domain.ErrInvalidInput, so callers can branch on either
// the specific or the general sentinel.
var (
	ErrDatasetNotFound = fmt.Errorf("dataset %w", domain.ErrNotFound)
	ErrTickerNotFound  = fmt.Errorf("ticker %w", domain.ErrNotFound)
	ErrInvalidTicker   = fmt.Errorf("%w: ticker must be 2-10 characters of A-Z, 0-9 or '.'", domain.ErrInvalidInput)
)
