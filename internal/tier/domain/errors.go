package domain

import "errors"

var (
	ErrNotFound            = errors.New("tier_not_found")
	ErrNoTierConfigured    = errors.New("no_tier_configured")
	ErrDuplicateTierLevel  = errors.New("duplicate_tier_level")
	ErrInvalidTierLevel    = errors.New("invalid_tier_level")
	ErrInvalidPremiumRange = errors.New("invalid_premium_range")
	ErrInvalidRate         = errors.New("invalid_rate")
)
