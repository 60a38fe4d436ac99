// Package domain holds the computed reconciliation views: match
// results, per-agent commission summaries and the agent pay sheet.
// Nothing here is persisted; everything is derived from statement
// lines, the sale book and the tier schedule.
package domain

import (
	"context"
	"time"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Match(ctx context.Context, importID snowflake.ID) (*MatchResult, error)
	ManualMatch(ctx context.Context, lineID, saleID snowflake.ID) (*MatchResult, error)
	CalculateImport(ctx context.Context, importID snowflake.ID) (*ImportCalculation, error)

	// MonthlyPay aggregates every import in a period into per-agent
	// summaries over a single read of the period's lines. Overrides, if
	// any, are applied in the same pass so every summary reflects the
	// same snapshot. A nil map means no overrides.
	MonthlyPay(ctx context.Context, pay string, overrides map[snowflake.ID]Override) (*MonthlyPayResult, error)
	AgentSheet(ctx context.Context, pay string, agentID snowflake.ID, rateAdjustment, bonus decimal.Decimal) (*AgentSheet, error)
}

// Override is a payroll-time tweak to one agent's pay: a rate
// adjustment on the whole commissionable base plus a flat bonus.
type Override struct {
	RateAdjustment decimal.Decimal
	Bonus          decimal.Decimal
}

// MatchResult reports one matching run over an import.
type MatchResult struct {
	ImportID     string `json:"import_id"`
	Total        int    `json:"total"`
	MatchedTotal int    `json:"matched_total"`
	NewlyMatched int    `json:"newly_matched"`
	Unmatched    int    `json:"unmatched"`
}

// CarrierSubtotal is one carrier's slice of an agent's pay.
type CarrierSubtotal struct {
	Carrier           string          `json:"carrier"`
	Premium           decimal.Decimal `json:"premium"`
	CarrierCommission decimal.Decimal `json:"carrier_commission"`
	AgentCommission   decimal.Decimal `json:"agent_commission"`
	Chargebacks       decimal.Decimal `json:"chargebacks"`
	LineCount         int             `json:"line_count"`
}

// AgentSummary is one agent's commission position for a period or a
// single import. Chargebacks stay netted inside the totals; the
// chargeback fields only surface how much of the net came in negative.
type AgentSummary struct {
	AgentID            string          `json:"agent_id"`
	AgentName          string          `json:"agent_name"`
	AgentRole          string          `json:"agent_role"`
	TierLevel          int             `json:"tier_level"`
	BaseCommissionRate decimal.Decimal `json:"base_commission_rate"`
	RateAdjustment     decimal.Decimal `json:"rate_adjustment"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
	TierPremium        decimal.Decimal `json:"tier_premium"`
	TierBasedOnPeriod  string          `json:"tier_based_on_period"`

	TotalPremium           decimal.Decimal `json:"total_premium"`
	CarrierCommissionTotal decimal.Decimal `json:"carrier_commission_total"`
	TotalAgentCommission   decimal.Decimal `json:"total_agent_commission"`
	Chargebacks            decimal.Decimal `json:"chargebacks"`
	ChargebackPremium      decimal.Decimal `json:"chargeback_premium"`
	ChargebackCount        int             `json:"chargeback_count"`
	NetAgentCommission     decimal.Decimal `json:"net_agent_commission"`
	Bonus                  decimal.Decimal `json:"bonus"`
	GrandTotal             decimal.Decimal `json:"grand_total"`
	LineCount              int             `json:"line_count"`

	CarrierBreakdown []CarrierSubtotal `json:"carrier_breakdown,omitempty"`
}

// ImportCalculation is the per-agent result of calculating one import.
type ImportCalculation struct {
	ImportID string         `json:"import_id"`
	Carrier  string         `json:"carrier"`
	Period   string         `json:"period"`
	Agents   []AgentSummary `json:"agents"`
	Warnings []string       `json:"warnings,omitempty"`
}

// MonthlyPayResult is the cross-carrier pay picture for one period.
type MonthlyPayResult struct {
	Period        string            `json:"period"`
	PeriodDisplay string            `json:"period_display"`
	ImportCount   int               `json:"import_count"`
	CarrierTotals []CarrierSubtotal `json:"carrier_totals"`
	Agents        []AgentSummary    `json:"agents"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// SheetLineItem is one statement line as it appears on an agent's pay
// sheet.
type SheetLineItem struct {
	Carrier           string                          `json:"carrier"`
	PolicyNumber      string                          `json:"policy_number"`
	InsuredName       string                          `json:"insured_name"`
	TransactionType   statementdomain.TransactionType `json:"transaction_type"`
	EffectiveDate     *time.Time                      `json:"effective_date,omitempty"`
	Premium           decimal.Decimal                 `json:"premium"`
	CarrierCommission decimal.Decimal                 `json:"carrier_commission"`
	AgentCommission   decimal.Decimal                 `json:"agent_commission"`
	IsChargeback      bool                            `json:"is_chargeback"`
}

// CategorySubtotal groups sheet premium into new business vs other.
type CategorySubtotal struct {
	Category        string          `json:"category"`
	Premium         decimal.Decimal `json:"premium"`
	AgentCommission decimal.Decimal `json:"agent_commission"`
	LineCount       int             `json:"line_count"`
}

// AgentSheet is the full line-item transcript behind one agent's pay.
type AgentSheet struct {
	Period        string             `json:"period"`
	PeriodDisplay string             `json:"period_display"`
	Agent         AgentSummary       `json:"agent"`
	LineItems     []SheetLineItem    `json:"line_items"`
	Categories    []CategorySubtotal `json:"categories"`
	GeneratedAt   time.Time          `json:"generated_at"`
}
