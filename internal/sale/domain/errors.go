package domain

import "errors"

var (
	ErrNotFound = errors.New("sale_not_found")
)
