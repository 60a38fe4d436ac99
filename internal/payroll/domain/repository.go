package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByPeriod(ctx context.Context, period string) (*PayrollRecord, error)
	History(ctx context.Context) ([]PayrollRecord, error)
	AgentLines(ctx context.Context, recordID snowflake.ID) ([]PayrollAgentLine, error)

	// ReplaceSnapshot atomically replaces the period's draft record and
	// agent lines with a new submitted snapshot, and stamps the
	// contributing sales commission-pending (sales already paid keep
	// their paid status). A locked record, or a concurrent submit
	// losing the unique-period race, yields ErrPayrollLocked and
	// nothing is written.
	ReplaceSnapshot(ctx context.Context, record *PayrollRecord, lines []PayrollAgentLine, saleIDs []snowflake.ID) error

	// MarkPaid flips the record, every agent line and the contributing
	// sales to paid in one transaction, so a failure anywhere leaves
	// the period retryable.
	MarkPaid(ctx context.Context, recordID snowflake.ID, saleIDs []snowflake.ID, period string, paidAt time.Time) error

	// Unlock reopens a submitted or paid record as a draft.
	Unlock(ctx context.Context, recordID snowflake.ID) error
}
