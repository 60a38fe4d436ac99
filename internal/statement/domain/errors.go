package domain

import "errors"

var (
	ErrNotFound          = errors.New("import_not_found")
	ErrLineNotFound      = errors.New("line_not_found")
	ErrInvalidCarrier    = errors.New("invalid_carrier")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrUnsupportedFormat = errors.New("unsupported_file_format")
	ErrEmptyFile         = errors.New("empty_file")
)
