package repository

import (
	"context"

	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/agencydesk/agencydesk/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) tierdomain.Repository {
	return &repository{db: conn}
}

func (r *repository) ListActive(ctx context.Context) ([]tierdomain.CommissionTier, error) {
	var tiers []tierdomain.CommissionTier
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("tier_level ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repository) List(ctx context.Context) ([]tierdomain.CommissionTier, error) {
	var tiers []tierdomain.CommissionTier
	err := r.db.WithContext(ctx).
		Order("tier_level ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repository) Create(ctx context.Context, tier *tierdomain.CommissionTier) error {
	err := r.db.WithContext(ctx).Create(tier).Error
	if db.IsDuplicateKeyErr(err) {
		return tierdomain.ErrDuplicateTierLevel
	}
	return err
}
