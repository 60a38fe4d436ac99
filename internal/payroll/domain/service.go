package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// AgentOverride is a payroll-time tweak for one agent: a rate
// adjustment applied to the whole commissionable premium base plus a
// flat bonus.
type AgentOverride struct {
	RateAdjustment decimal.Decimal `json:"rate_adjustment"`
	Bonus          decimal.Decimal `json:"bonus"`
}

// Detail is a payroll record with its agent lines.
type Detail struct {
	Record PayrollRecord      `json:"record"`
	Agents []PayrollAgentLine `json:"agents"`
}

type Service interface {
	// Submit freezes the period's commission run into a locked payroll
	// snapshot. Overrides are keyed by agent id string.
	Submit(ctx context.Context, period string, overrides map[string]AgentOverride, submittedBy snowflake.ID) (*Detail, error)

	// MarkPaid flips a submitted period to paid and propagates paid
	// status to every sale matched into the period's imports.
	MarkPaid(ctx context.Context, period string) (*Detail, error)

	// Unlock reopens a submitted or paid period for corrections. Sales
	// already marked paid stay paid.
	Unlock(ctx context.Context, period string) (*Detail, error)

	History(ctx context.Context) ([]PayrollRecord, error)
	Detail(ctx context.Context, period string) (*Detail, error)
}
