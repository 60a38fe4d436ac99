package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Resolution is the tier decision for one agent and one pay period.
type Resolution struct {
	TierLevel      int             `json:"tier_level"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	TierPremium    decimal.Decimal `json:"tier_premium"`
	BasedOnPeriod  string          `json:"based_on_period"`
}

// Resolver decides an agent's commission tier for a target period from
// the written premium of the month before it.
type Resolver interface {
	Resolve(ctx context.Context, agentID snowflake.ID, targetPeriod string) (*Resolution, error)
}

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
}

type CreateRequest struct {
	TierLevel         int              `json:"tier_level"`
	MinWrittenPremium decimal.Decimal  `json:"min_written_premium"`
	MaxWrittenPremium *decimal.Decimal `json:"max_written_premium,omitempty"`
	CommissionRate    decimal.Decimal  `json:"commission_rate"`
	Description       string           `json:"description"`
}

type Response struct {
	ID                string           `json:"id"`
	TierLevel         int              `json:"tier_level"`
	MinWrittenPremium decimal.Decimal  `json:"min_written_premium"`
	MaxWrittenPremium *decimal.Decimal `json:"max_written_premium,omitempty"`
	CommissionRate    decimal.Decimal  `json:"commission_rate"`
	Description       string           `json:"description"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
