package domain

import "errors"

var (
	ErrNoImportsForPeriod = errors.New("no_imports_for_period")
)
