package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*Agent, error)
	FindByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]Agent, error)
	FindByProducerCode(ctx context.Context, code string) (*Agent, error)
	List(ctx context.Context) ([]Agent, error)
}
