package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CandidateFilter narrows the sales considered for fuzzy matching.
type CandidateFilter struct {
	Carrier string
	State   string
}

type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*Sale, error)
	FindByPolicyNumber(ctx context.Context, policyNumber string) (*Sale, error)
	SearchCandidates(ctx context.Context, filter CandidateFilter) ([]Sale, error)

	// SumWrittenPremium totals written premium for one producer across a
	// sale-date window (inclusive start, exclusive end).
	SumWrittenPremium(ctx context.Context, producerID snowflake.ID, from, to time.Time) (decimal.Decimal, error)
}
