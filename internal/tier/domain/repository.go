package domain

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]CommissionTier, error)
	List(ctx context.Context) ([]CommissionTier, error)
	Create(ctx context.Context, tier *CommissionTier) error
}
