package service

import (
	"context"
	"testing"
	"time"

	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeAgentCommissionSignedSum(t *testing.T) {
	lines := []statementdomain.StatementLine{
		{PremiumAmount: mustDec("1000")},
		{PremiumAmount: mustDec("500")},
		{PremiumAmount: mustDec("-300")},
	}

	totals := computeAgentCommission(lines, mustDec("0.10"), decimal.Zero, decimal.Zero)
	assert.Equal(t, "1200", totals.Premium.String())
	assert.Equal(t, "150", totals.AgentCommission.String())
	assert.Equal(t, "-30", totals.Chargebacks.String())
	assert.Equal(t, "120", totals.Net.String())
	assert.Equal(t, 1, totals.ChargebackCount)
	assert.Equal(t, "-300", totals.ChargebackPremium.String())
}

func TestComputeAgentCommissionNoFlooring(t *testing.T) {
	lines := []statementdomain.StatementLine{
		{PremiumAmount: mustDec("100")},
		{PremiumAmount: mustDec("-900")},
	}
	totals := computeAgentCommission(lines, mustDec("0.10"), decimal.Zero, decimal.Zero)
	assert.Equal(t, "-80", totals.Net.String())
	assert.Equal(t, "-80", totals.GrandTotal.String())
}

func TestComputeAgentCommissionAdjustmentAndBonus(t *testing.T) {
	lines := []statementdomain.StatementLine{
		{PremiumAmount: mustDec("2000")},
	}
	totals := computeAgentCommission(lines, mustDec("0.05"), mustDec("0.01"), mustDec("250"))
	// adjustment applies to the whole premium base, not line by line
	assert.Equal(t, "120", totals.Net.String())
	assert.Equal(t, "370", totals.GrandTotal.String())
}

// Two agents on one statement: X nets to zero after a full chargeback,
// Y earns at the higher bracket reached by prior-month production.
func TestMonthlyPayWorkedScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agentX := env.seedAgent(t, "Agent X")
	agentY := env.seedAgent(t, "Agent Y")

	lowMax := 50000.0
	env.seedTier(t, 1, 0, &lowMax, 0.10)
	env.seedTier(t, 2, 50000, nil, 0.125)

	// prior month (2025-01) production sets the brackets for 2025-02
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	env.seedSale(t, agentX.ID, "PX-1", "Pat Doe", "grange", "OH", 10000, jan)
	env.seedSale(t, agentX.ID, "PX-2", "Sam Roe", "grange", "OH", 10000, jan)
	env.seedSale(t, agentY.ID, "PY-1", "Lee Cruz", "grange", "OH", 60000, jan)

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "PX-1", insured: "Pat Doe", txType: statementdomain.TxNewBusiness, premium: 1000, rate: 0.15},
		{policy: "PX-2", insured: "Sam Roe", txType: statementdomain.TxCancellation, premium: -1000, rate: 0.15},
		{policy: "PY-1", insured: "Lee Cruz", txType: statementdomain.TxRenewal, premium: 500, rate: 0.15},
	})

	_, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)

	result, err := env.svc.MonthlyPay(ctx, "2025-02", nil)
	require.NoError(t, err)
	require.Len(t, result.Agents, 2)
	assert.Empty(t, result.Warnings)

	byName := map[string]recondomain.AgentSummary{}
	for _, a := range result.Agents {
		byName[a.AgentName] = a
	}

	x := byName["Agent X"]
	assert.Equal(t, 1, x.TierLevel)
	assert.True(t, x.NetAgentCommission.IsZero(), "X nets to zero, got %s", x.NetAgentCommission)
	assert.Equal(t, "100", x.TotalAgentCommission.String())
	assert.Equal(t, "-100", x.Chargebacks.String())
	assert.Equal(t, 1, x.ChargebackCount)

	y := byName["Agent Y"]
	assert.Equal(t, 2, y.TierLevel)
	assert.Equal(t, "62.5", y.NetAgentCommission.String())
	assert.Equal(t, "2025-01", y.TierBasedOnPeriod)

	// Y outranks X in the commission-desc ordering
	assert.Equal(t, "Agent Y", result.Agents[0].AgentName)
}

func TestCalculateImportPersistsLineCommission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	env.seedTier(t, 1, 0, nil, 0.10)
	env.seedSale(t, agent.ID, "POL-1", "Alice Smith", "grange", "OH", 1000,
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "POL-1", insured: "Alice Smith", txType: statementdomain.TxRenewal, premium: 800, rate: 0.15},
	})
	_, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)

	result, err := env.svc.CalculateImport(ctx, importID)
	require.NoError(t, err)
	require.Len(t, result.Agents, 1)
	assert.Equal(t, "80", result.Agents[0].NetAgentCommission.String())

	lines, err := env.imports.Lines(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, "80", lines[0].AgentCommissionAmount.String())
	assert.Equal(t, "0.1", lines[0].AgentCommissionRate.String())
}

func TestCalculationWarnsOnTierGap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	// bracket stops at 5000, agent produced 10000 the month before
	gapMax := 5000.0
	env.seedTier(t, 1, 0, &gapMax, 0.10)
	env.seedSale(t, agent.ID, "POL-1", "Alice Smith", "grange", "OH", 10000,
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "POL-1", insured: "Alice Smith", txType: statementdomain.TxRenewal, premium: 800, rate: 0.15},
	})
	_, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)

	result, err := env.svc.CalculateImport(ctx, importID)
	require.NoError(t, err)
	assert.Empty(t, result.Agents)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Dana Reed")
}

func TestMonthlyPayAppliesOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	other := env.seedAgent(t, "Morgan Lee")
	env.seedTier(t, 1, 0, nil, 0.10)
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	env.seedSale(t, agent.ID, "POL-1", "Alice Smith", "grange", "OH", 1000, jan)
	env.seedSale(t, other.ID, "POL-2", "Bob Jones", "grange", "OH", 1000, jan)

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "POL-1", insured: "Alice Smith", txType: statementdomain.TxRenewal, premium: 800, rate: 0.15},
		{policy: "POL-2", insured: "Bob Jones", txType: statementdomain.TxRenewal, premium: 800, rate: 0.15},
	})
	_, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)

	overrides := map[snowflake.ID]recondomain.Override{
		agent.ID: {RateAdjustment: mustDec("0.02"), Bonus: mustDec("100")},
	}
	result, err := env.svc.MonthlyPay(ctx, "2025-02", overrides)
	require.NoError(t, err)
	require.Len(t, result.Agents, 2)

	byName := map[string]recondomain.AgentSummary{}
	for _, a := range result.Agents {
		byName[a.AgentName] = a
	}

	adjusted := byName["Dana Reed"]
	assert.Equal(t, "0.12", adjusted.CommissionRate.String())
	assert.Equal(t, "96", adjusted.NetAgentCommission.String())
	assert.Equal(t, "196", adjusted.GrandTotal.String())

	plain := byName["Morgan Lee"]
	assert.Equal(t, "0.1", plain.CommissionRate.String())
	assert.Equal(t, "80", plain.NetAgentCommission.String())
	assert.Equal(t, "80", plain.GrandTotal.String())
}

func TestMonthlyPayNoImports(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.MonthlyPay(context.Background(), "2030-01", nil)
	assert.ErrorIs(t, err, recondomain.ErrNoImportsForPeriod)
}

func TestAgentSheetLineItemsAndCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	env.seedTier(t, 1, 0, nil, 0.10)
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	env.seedSale(t, agent.ID, "POL-1", "Alice Smith", "grange", "OH", 1000, jan)
	env.seedSale(t, agent.ID, "POL-2", "Bob Jones", "grange", "OH", 1000, jan)
	env.seedSale(t, agent.ID, "POL-3", "Carol White", "grange", "OH", 1000, jan)

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "POL-1", insured: "Alice Smith", txType: statementdomain.TxNewBusiness, premium: 1000, rate: 0.15},
		{policy: "POL-2", insured: "Bob Jones", txType: statementdomain.TxRenewal, premium: 600, rate: 0.15},
		{policy: "POL-3", insured: "Carol White", txType: statementdomain.TxCancellation, premium: -400, rate: 0.15},
	})
	_, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)

	sheet, err := env.svc.AgentSheet(ctx, "2025-02", agent.ID, mustDec("0.02"), mustDec("50"))
	require.NoError(t, err)

	require.Len(t, sheet.LineItems, 3)
	// chargebacks sort last
	assert.False(t, sheet.LineItems[0].IsChargeback)
	assert.False(t, sheet.LineItems[1].IsChargeback)
	assert.True(t, sheet.LineItems[2].IsChargeback)
	assert.Equal(t, "POL-3", sheet.LineItems[2].PolicyNumber)

	// effective rate 0.12: 1000*.12 + 600*.12 - 400*.12 = 144
	assert.Equal(t, "144", sheet.Agent.NetAgentCommission.String())
	assert.Equal(t, "194", sheet.Agent.GrandTotal.String())
	assert.Equal(t, "0.12", sheet.Agent.CommissionRate.String())

	require.Len(t, sheet.Categories, 2)
	assert.Equal(t, "new_business", sheet.Categories[0].Category)
	assert.Equal(t, "1000", sheet.Categories[0].Premium.String())
	assert.Equal(t, 1, sheet.Categories[0].LineCount)
	assert.Equal(t, "other", sheet.Categories[1].Category)
	assert.Equal(t, 2, sheet.Categories[1].LineCount)
}
