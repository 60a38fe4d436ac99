package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CommissionTier is one bracket of the agency commission schedule.
// Brackets are min-inclusive, max-exclusive; a nil max marks the
// unbounded top bracket.
type CommissionTier struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TierLevel int          `gorm:"column:tier_level;not null;uniqueIndex" json:"tier_level"`

	MinWrittenPremium decimal.Decimal  `gorm:"column:min_written_premium;type:numeric(14,2);not null" json:"min_written_premium"`
	MaxWrittenPremium *decimal.Decimal `gorm:"column:max_written_premium;type:numeric(14,2)" json:"max_written_premium,omitempty"`
	CommissionRate    decimal.Decimal  `gorm:"column:commission_rate;type:numeric(6,4);not null" json:"commission_rate"`

	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CommissionTier) TableName() string { return "commission_tiers" }

func (t *CommissionTier) Validate() error {
	if t.TierLevel <= 0 {
		return ErrInvalidTierLevel
	}
	if t.MinWrittenPremium.IsNegative() {
		return ErrInvalidPremiumRange
	}
	if t.MaxWrittenPremium != nil && t.MaxWrittenPremium.LessThanOrEqual(t.MinWrittenPremium) {
		return ErrInvalidPremiumRange
	}
	if t.CommissionRate.IsNegative() || t.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}

// Contains reports whether premium falls inside this bracket.
func (t *CommissionTier) Contains(premium decimal.Decimal) bool {
	if premium.LessThan(t.MinWrittenPremium) {
		return false
	}
	if t.MaxWrittenPremium == nil {
		return true
	}
	return premium.LessThan(*t.MaxWrittenPremium)
}
