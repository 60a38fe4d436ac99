package service

import (
	"context"
	"fmt"

	"github.com/agencydesk/agencydesk/internal/period"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

type ResolverParam struct {
	fx.In

	Repository tierdomain.Repository
	Sales      saledomain.Repository
}

type resolver struct {
	repo  tierdomain.Repository
	sales saledomain.Repository
}

func NewResolver(p ResolverParam) tierdomain.Resolver {
	return &resolver{repo: p.Repository, sales: p.Sales}
}

// Resolve looks up the agent's written premium for the month before
// targetPeriod and finds the bracket containing it. An agent with no
// prior production lands in the lowest bracket.
func (r *resolver) Resolve(ctx context.Context, agentID snowflake.ID, targetPeriod string) (*tierdomain.Resolution, error) {
	prior, err := period.Prev(targetPeriod)
	if err != nil {
		return nil, err
	}

	from, to, err := period.Bounds(prior)
	if err != nil {
		return nil, err
	}

	premium, err := r.sales.SumWrittenPremium(ctx, agentID, from, to)
	if err != nil {
		return nil, err
	}

	tiers, err := r.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, tierdomain.ErrNoTierConfigured
	}

	for _, t := range tiers {
		if t.Contains(premium) {
			return &tierdomain.Resolution{
				TierLevel:      t.TierLevel,
				CommissionRate: t.CommissionRate,
				TierPremium:    premium,
				BasedOnPeriod:  prior,
			}, nil
		}
	}

	// Premium fell in a hole of the schedule.
	return nil, fmt.Errorf("%w: no bracket covers premium %s", tierdomain.ErrNoTierConfigured, premium.StringFixed(2))
}
