package domain

import "errors"

var (
	ErrNotFound = errors.New("agent_not_found")
)
