package service

import (
	"context"
	"strings"
	"time"

	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repository tierdomain.Repository
	Log        *zap.Logger
	GenID      *snowflake.Node
}

type service struct {
	repo  tierdomain.Repository
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) tierdomain.Service {
	return &service{
		repo:  p.Repository,
		log:   p.Log,
		genID: p.GenID,
	}
}

func (s *service) List(ctx context.Context) ([]tierdomain.Response, error) {
	tiers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]tierdomain.Response, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, toResponse(t))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req tierdomain.CreateRequest) (*tierdomain.Response, error) {
	now := time.Now().UTC()
	tier := tierdomain.CommissionTier{
		ID:                s.genID.Generate(),
		TierLevel:         req.TierLevel,
		MinWrittenPremium: req.MinWrittenPremium,
		MaxWrittenPremium: req.MaxWrittenPremium,
		CommissionRate:    req.CommissionRate,
		Description:       strings.TrimSpace(req.Description),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := tier.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &tier); err != nil {
		return nil, err
	}

	s.log.Info("commission tier created",
		zap.Int("tier_level", tier.TierLevel),
		zap.String("rate", tier.CommissionRate.String()),
	)

	resp := toResponse(tier)
	return &resp, nil
}

func toResponse(t tierdomain.CommissionTier) tierdomain.Response {
	return tierdomain.Response{
		ID:                t.ID.String(),
		TierLevel:         t.TierLevel,
		MinWrittenPremium: t.MinWrittenPremium,
		MaxWrittenPremium: t.MaxWrittenPremium,
		CommissionRate:    t.CommissionRate,
		Description:       t.Description,
		IsActive:          t.IsActive,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
