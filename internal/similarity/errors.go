package similarity

import (
	"fmt"

	"companylens/pkg/contracts/domain"
)

var (
	// ErrEmptyTable is returned when the table is nil or has no rows.
	ErrEmptyTable = fmt.Errorf("%w: metric table is empty", domain.ErrInvalidInput)
	// ErrNegativeThreshold is returned for negative or NaN thresholds.
	ErrNegativeThreshold = fmt.Errorf("%w: threshold must be a non-negative number", domain.ErrInvalidInput)
)

func emptyTableError() error {
	return &domain.ValidationError{
		Field:   "table",
		Message: "metric table must contain at least one row",
		Err:     ErrEmptyTable,
	}
}

func thresholdError(threshold float64) error {
	return &domain.ValidationError{
		Field:   "threshold",
		Message: fmt.Sprintf("threshold must be >= 0, got %v", threshold),
		Value:   threshold,
		Err:     ErrNegativeThreshold,
	}
}
