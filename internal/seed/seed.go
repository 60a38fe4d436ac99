package seed

import (
	"context"
	"errors"
	"time"

	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type tierSpec struct {
	level       int
	min         int64
	max         int64 // 0 means unbounded
	rate        string
	description string
}

var defaultTiers = []tierSpec{
	{1, 0, 40000, "0.03", "Under 40K - 3%"},
	{2, 40000, 50000, "0.03", "40K-50K - 3%"},
	{3, 50000, 60000, "0.04", "50K-60K - 4%"},
	{4, 60000, 100000, "0.05", "60K-100K - 5%"},
	{5, 100000, 150000, "0.06", "100K-150K - 6%"},
	{6, 150000, 200000, "0.07", "150K-200K - 7%"},
	{7, 200000, 0, "0.08", "200K+ - 8%"},
}

// EnsureDefaultTiers installs the stock commission schedule when the
// tier table is empty. An already-populated table is left alone.
func EnsureDefaultTiers(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&tierdomain.CommissionTier{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, spec := range defaultTiers {
			rate, err := decimal.NewFromString(spec.rate)
			if err != nil {
				return err
			}

			tier := tierdomain.CommissionTier{
				ID:                node.Generate(),
				TierLevel:         spec.level,
				MinWrittenPremium: decimal.NewFromInt(spec.min),
				CommissionRate:    rate,
				Description:       spec.description,
				IsActive:          true,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if spec.max > 0 {
				max := decimal.NewFromInt(spec.max)
				tier.MaxWrittenPremium = &max
			}

			if err := tx.Create(&tier).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
