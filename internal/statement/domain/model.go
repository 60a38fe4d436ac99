package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ImportStatus string

const (
	ImportUploaded   ImportStatus = "uploaded"
	ImportProcessing ImportStatus = "processing"
	ImportProcessed  ImportStatus = "processed"
	ImportReconciled ImportStatus = "reconciled"
	ImportFailed     ImportStatus = "failed"
)

type TransactionType string

const (
	TxNewBusiness   TransactionType = "new_business"
	TxRenewal       TransactionType = "renewal"
	TxEndorsement   TransactionType = "endorsement"
	TxCancellation  TransactionType = "cancellation"
	TxReinstatement TransactionType = "reinstatement"
	TxAudit         TransactionType = "audit"
	TxAdjustment    TransactionType = "adjustment"
	TxOther         TransactionType = "other"
)

type MatchConfidence string

const (
	MatchExact  MatchConfidence = "exact"
	MatchFuzzy  MatchConfidence = "fuzzy"
	MatchManual MatchConfidence = "manual"
)

// Supported carrier identifiers. "other" routes to the generic parser.
const (
	CarrierNationalGeneral = "national_general"
	CarrierProgressive     = "progressive"
	CarrierSafeco          = "safeco"
	CarrierGrange          = "grange"
	CarrierTravelers       = "travelers"
	CarrierGeico           = "geico"
	CarrierFirstConnect    = "first_connect"
	CarrierUniversal       = "universal"
	CarrierNBS             = "nbs"
	CarrierHartford        = "hartford"
	CarrierOther           = "other"
)

var Carriers = []string{
	CarrierNationalGeneral,
	CarrierProgressive,
	CarrierSafeco,
	CarrierGrange,
	CarrierTravelers,
	CarrierGeico,
	CarrierFirstConnect,
	CarrierUniversal,
	CarrierNBS,
	CarrierHartford,
	CarrierOther,
}

func ValidCarrier(carrier string) bool {
	for _, c := range Carriers {
		if c == carrier {
			return true
		}
	}
	return false
}

// StatementImport is one uploaded carrier statement file.
type StatementImport struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Filename   string       `gorm:"type:text;not null" json:"filename"`
	FileFormat string       `gorm:"column:file_format;type:text;not null" json:"file_format"`
	FileSize   int64        `gorm:"column:file_size;not null" json:"file_size"`
	Carrier    string       `gorm:"type:text;not null;index:idx_imports_carrier_period" json:"carrier"`
	Period     string       `gorm:"type:text;not null;index:idx_imports_carrier_period" json:"period"`

	Status ImportStatus `gorm:"type:text;not null;default:'uploaded'" json:"status"`

	TotalRows     int `gorm:"column:total_rows;not null;default:0" json:"total_rows"`
	MatchedRows   int `gorm:"column:matched_rows;not null;default:0" json:"matched_rows"`
	UnmatchedRows int `gorm:"column:unmatched_rows;not null;default:0" json:"unmatched_rows"`

	TotalPremium    decimal.Decimal `gorm:"column:total_premium;type:numeric(14,2);not null;default:0" json:"total_premium"`
	TotalCommission decimal.Decimal `gorm:"column:total_commission;type:numeric(14,2);not null;default:0" json:"total_commission"`

	ProcessingStartedAt   *time.Time `gorm:"column:processing_started_at" json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `gorm:"column:processing_completed_at" json:"processing_completed_at,omitempty"`
	ErrorMessage          string     `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StatementImport) TableName() string { return "statement_imports" }

// StatementLine is one normalized row of a statement import.
type StatementLine struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ImportID snowflake.ID `gorm:"column:import_id;not null;index" json:"import_id"`

	PolicyNumber       string          `gorm:"column:policy_number;type:text;not null;index" json:"policy_number"`
	InsuredName        string          `gorm:"column:insured_name;type:text" json:"insured_name"`
	TransactionType    TransactionType `gorm:"column:transaction_type;type:text;not null;default:'other'" json:"transaction_type"`
	TransactionTypeRaw string          `gorm:"column:transaction_type_raw;type:text" json:"transaction_type_raw"`

	TransactionDate *time.Time `gorm:"column:transaction_date" json:"transaction_date,omitempty"`
	EffectiveDate   *time.Time `gorm:"column:effective_date" json:"effective_date,omitempty"`

	PremiumAmount    decimal.Decimal `gorm:"column:premium_amount;type:numeric(14,2);not null;default:0" json:"premium_amount"`
	CommissionRate   decimal.Decimal `gorm:"column:commission_rate;type:numeric(8,6);not null;default:0" json:"commission_rate"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,2);not null;default:0" json:"commission_amount"`

	ProducerName   string `gorm:"column:producer_name;type:text" json:"producer_name,omitempty"`
	ProductType    string `gorm:"column:product_type;type:text" json:"product_type,omitempty"`
	LineOfBusiness string `gorm:"column:line_of_business;type:text" json:"line_of_business,omitempty"`
	State          string `gorm:"type:text" json:"state,omitempty"`
	TermMonths     int    `gorm:"column:term_months;default:0" json:"term_months,omitempty"`

	IsMatched       bool            `gorm:"column:is_matched;not null;default:false" json:"is_matched"`
	MatchedSaleID   *snowflake.ID   `gorm:"column:matched_sale_id;index" json:"matched_sale_id,omitempty"`
	MatchConfidence MatchConfidence `gorm:"column:match_confidence;type:text" json:"match_confidence,omitempty"`
	AssignedAgentID *snowflake.ID   `gorm:"column:assigned_agent_id;index" json:"assigned_agent_id,omitempty"`
	MatchedAt       *time.Time      `gorm:"column:matched_at" json:"matched_at,omitempty"`

	AgentCommissionRate   decimal.Decimal `gorm:"column:agent_commission_rate;type:numeric(8,6);not null;default:0" json:"agent_commission_rate"`
	AgentCommissionAmount decimal.Decimal `gorm:"column:agent_commission_amount;type:numeric(14,2);not null;default:0" json:"agent_commission_amount"`

	RawData string `gorm:"column:raw_data;type:text" json:"raw_data,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (StatementLine) TableName() string { return "statement_lines" }

// FileFormat derives the stored format from a filename extension.
func FileFormat(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".txt"):
		return "csv"
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		return "xlsx"
	case strings.HasSuffix(name, ".pdf"):
		return "pdf"
	default:
		return ""
	}
}
