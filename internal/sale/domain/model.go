package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending CommissionStatus = "pending"
	CommissionPaid    CommissionStatus = "paid"
)

// Sale is a sold policy as recorded by the agency book of business.
type Sale struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	PolicyNumber string       `gorm:"column:policy_number;type:text;not null;uniqueIndex" json:"policy_number"`
	PolicyType   string       `gorm:"column:policy_type;type:text" json:"policy_type"`
	Carrier      string       `gorm:"type:text;index" json:"carrier"`
	State        string       `gorm:"type:text" json:"state"`

	WrittenPremium    decimal.Decimal `gorm:"column:written_premium;type:numeric(14,2);not null" json:"written_premium"`
	RecognizedPremium decimal.Decimal `gorm:"column:recognized_premium;type:numeric(14,2)" json:"recognized_premium"`

	ProducerID snowflake.ID `gorm:"column:producer_id;not null;index" json:"producer_id"`
	ClientName string       `gorm:"column:client_name;type:text" json:"client_name"`

	Status               string           `gorm:"type:text;not null;default:'active'" json:"status"`
	CommissionStatus     CommissionStatus `gorm:"column:commission_status;type:text;not null;default:'pending'" json:"commission_status"`
	CommissionPaidAt     *time.Time       `gorm:"column:commission_paid_at" json:"commission_paid_at,omitempty"`
	CommissionPaidPeriod string           `gorm:"column:commission_paid_period;type:text" json:"commission_paid_period,omitempty"`

	SaleDate      time.Time  `gorm:"column:sale_date;not null;index" json:"sale_date"`
	EffectiveDate *time.Time `gorm:"column:effective_date" json:"effective_date,omitempty"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	TermMonths    int        `gorm:"column:term_months;default:12" json:"term_months"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Sale) TableName() string { return "sales" }

// NormalizePolicyNumber canonicalizes a policy number for lookup: trim,
// uppercase, collapse inner whitespace, strip leading zeros.
func NormalizePolicyNumber(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return s
	}
	return trimmed
}
