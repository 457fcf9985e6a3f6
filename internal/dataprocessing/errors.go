package dataprocessing

import "errors"

var (
	// ErrMissingHeader is returned when a source has no header row.
	ErrMissingHeader = errors.New("missing header row")

	// ErrCompanyColumnNotFound is returned when the header lacks the company column.
	ErrCompanyColumnNotFound = errors.New("company column not found")

	// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
