package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PayrollStatus string

const (
	PayrollDraft     PayrollStatus = "draft"
	PayrollSubmitted PayrollStatus = "submitted"
	PayrollPaid      PayrollStatus = "paid"
)

// PayrollRecord is the locked snapshot of one pay period. One record
// per period; submitting again while locked is refused.
type PayrollRecord struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	Period        string        `gorm:"type:text;not null;uniqueIndex" json:"period"`
	PeriodDisplay string        `gorm:"column:period_display;type:text;not null" json:"period_display"`
	Status        PayrollStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	IsLocked      bool          `gorm:"column:is_locked;not null;default:false" json:"is_locked"`

	SubmittedAt   *time.Time    `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	SubmittedByID *snowflake.ID `gorm:"column:submitted_by_id" json:"submitted_by_id,omitempty"`
	PaidAt        *time.Time    `gorm:"column:paid_at" json:"paid_at,omitempty"`

	TotalAgents      int             `gorm:"column:total_agents;not null;default:0" json:"total_agents"`
	TotalPremium     decimal.Decimal `gorm:"column:total_premium;type:numeric(14,2);not null;default:0" json:"total_premium"`
	TotalAgentPay    decimal.Decimal `gorm:"column:total_agent_pay;type:numeric(14,2);not null;default:0" json:"total_agent_pay"`
	TotalChargebacks decimal.Decimal `gorm:"column:total_chargebacks;type:numeric(14,2);not null;default:0" json:"total_chargebacks"`
	TotalCarriers    int             `gorm:"column:total_carriers;not null;default:0" json:"total_carriers"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PayrollRecord) TableName() string { return "payroll_records" }

// PayrollAgentLine is one agent's frozen pay inside a snapshot.
type PayrollAgentLine struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	PayrollRecordID snowflake.ID `gorm:"column:payroll_record_id;not null;index" json:"payroll_record_id"`

	AgentID   snowflake.ID `gorm:"column:agent_id;not null;index" json:"agent_id"`
	AgentName string       `gorm:"column:agent_name;type:text;not null" json:"agent_name"`
	AgentRole string       `gorm:"column:agent_role;type:text" json:"agent_role"`

	TierLevel      int             `gorm:"column:tier_level;not null;default:0" json:"tier_level"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(8,6);not null;default:0" json:"commission_rate"`

	TotalPremium         decimal.Decimal `gorm:"column:total_premium;type:numeric(14,2);not null;default:0" json:"total_premium"`
	TotalAgentCommission decimal.Decimal `gorm:"column:total_agent_commission;type:numeric(14,2);not null;default:0" json:"total_agent_commission"`
	Chargebacks          decimal.Decimal `gorm:"column:chargebacks;type:numeric(14,2);not null;default:0" json:"chargebacks"`
	ChargebackPremium    decimal.Decimal `gorm:"column:chargeback_premium;type:numeric(14,2);not null;default:0" json:"chargeback_premium"`
	ChargebackCount      int             `gorm:"column:chargeback_count;not null;default:0" json:"chargeback_count"`
	NetAgentPay          decimal.Decimal `gorm:"column:net_agent_pay;type:numeric(14,2);not null;default:0" json:"net_agent_pay"`
	LineCount            int             `gorm:"column:line_count;not null;default:0" json:"line_count"`

	RateAdjustment decimal.Decimal `gorm:"column:rate_adjustment;type:numeric(8,6);not null;default:0" json:"rate_adjustment"`
	Bonus          decimal.Decimal `gorm:"column:bonus;type:numeric(14,2);not null;default:0" json:"bonus"`
	GrandTotal     decimal.Decimal `gorm:"column:grand_total;type:numeric(14,2);not null;default:0" json:"grand_total"`

	CarrierBreakdown datatypes.JSON `gorm:"column:carrier_breakdown" json:"carrier_breakdown,omitempty"`

	CommissionStatus string     `gorm:"column:commission_status;type:text;not null;default:'pending'" json:"commission_status"`
	PaidAt           *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PayrollAgentLine) TableName() string { return "payroll_agent_lines" }
