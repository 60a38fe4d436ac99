package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	List(ctx context.Context) ([]ImportSummary, error)
	Get(ctx context.Context, id snowflake.ID) (*ImportDetail, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type UploadRequest struct {
	Carrier  string
	Period   string
	Filename string
	Data     []byte
}

// CarrierAdvisory reports a disagreement between the operator's carrier
// selection and what the file looks like. The selection always wins.
type CarrierAdvisory struct {
	Selected string `json:"selected"`
	Detected string `json:"detected"`
}

// DuplicateAdvisory warns that this carrier/period combination has been
// imported before. The upload still proceeds.
type DuplicateAdvisory struct {
	Carrier           string   `json:"carrier"`
	Period            string   `json:"period"`
	ExistingImportIDs []string `json:"existing_import_ids"`
}

type UploadResult struct {
	Import            ImportSummary      `json:"import"`
	CarrierAdvisory   *CarrierAdvisory   `json:"carrier_advisory,omitempty"`
	DuplicateAdvisory *DuplicateAdvisory `json:"duplicate_advisory,omitempty"`
}

type ImportSummary struct {
	ID              string          `json:"id"`
	Filename        string          `json:"filename"`
	FileFormat      string          `json:"file_format"`
	Carrier         string          `json:"carrier"`
	Period          string          `json:"period"`
	PeriodDisplay   string          `json:"period_display"`
	Status          ImportStatus    `json:"status"`
	TotalRows       int             `json:"total_rows"`
	MatchedRows     int             `json:"matched_rows"`
	UnmatchedRows   int             `json:"unmatched_rows"`
	TotalPremium    decimal.Decimal `json:"total_premium"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	CreatedAt       time.Time       `json:"created_at"`
}

type LineView struct {
	ID                 string           `json:"id"`
	PolicyNumber       string           `json:"policy_number"`
	InsuredName        string           `json:"insured_name"`
	TransactionType    TransactionType  `json:"transaction_type"`
	TransactionTypeRaw string           `json:"transaction_type_raw,omitempty"`
	EffectiveDate      *time.Time       `json:"effective_date,omitempty"`
	PremiumAmount      decimal.Decimal  `json:"premium_amount"`
	CommissionRate     decimal.Decimal  `json:"commission_rate"`
	CommissionAmount   decimal.Decimal  `json:"commission_amount"`
	ProducerName       string           `json:"producer_name,omitempty"`
	State              string           `json:"state,omitempty"`
	IsMatched          bool             `json:"is_matched"`
	MatchConfidence    MatchConfidence  `json:"match_confidence,omitempty"`
	MatchedSaleID      string           `json:"matched_sale_id,omitempty"`
	AssignedAgentID    string           `json:"assigned_agent_id,omitempty"`
}

// TypeBreakdown aggregates lines by raw transaction label for the
// reconciliation summary.
type TypeBreakdown struct {
	TransactionType TransactionType `json:"transaction_type"`
	Count           int             `json:"count"`
	Premium         decimal.Decimal `json:"premium"`
	Commission      decimal.Decimal `json:"commission"`
}

type ImportDetail struct {
	Import         ImportSummary   `json:"import"`
	MatchedLines   []LineView      `json:"matched_lines"`
	UnmatchedLines []LineView      `json:"unmatched_lines"`
	TypeBreakdown  []TypeBreakdown `json:"type_breakdown"`
}
