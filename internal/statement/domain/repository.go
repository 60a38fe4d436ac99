package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// CreateWithLines persists the import header and its lines in one
	// transaction. Nothing is stored if any row fails.
	CreateWithLines(ctx context.Context, imp *StatementImport, lines []StatementLine) error

	FindByID(ctx context.Context, id snowflake.ID) (*StatementImport, error)
	List(ctx context.Context) ([]StatementImport, error)
	ListByPeriod(ctx context.Context, period string) ([]StatementImport, error)
	FindByCarrierPeriod(ctx context.Context, carrier, period string) ([]StatementImport, error)
	Delete(ctx context.Context, id snowflake.ID) error

	Lines(ctx context.Context, importID snowflake.ID) ([]StatementLine, error)
	LinesByPeriod(ctx context.Context, period string) ([]StatementLine, error)
	FindLine(ctx context.Context, lineID snowflake.ID) (*StatementLine, error)
	UpdateLine(ctx context.Context, line *StatementLine) error
	UpdateLines(ctx context.Context, lines []StatementLine) error

	// RefreshCounters recomputes matched/unmatched totals on the import
	// header from its lines and sets the given status.
	RefreshCounters(ctx context.Context, importID snowflake.ID, status ImportStatus) error
}
