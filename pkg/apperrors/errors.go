package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrEmptyInput         = errors.New("empty input")
	ErrInputTooLarge      = errors.New("input too large")
	ErrInvalidRegistry    = errors.New("invalid schema registry")
	ErrWorkbookRead       = errors.New("workbook could not be read")
	ErrRegistryConnection = errors.New("registry database unavailable")
)
