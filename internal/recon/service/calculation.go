package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	"github.com/agencydesk/agencydesk/internal/period"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// commissionTotals is the output of computeAgentCommission.
// AgentCommission is the positive side only; Chargebacks carries the
// negative side; Net is their sum. Nothing is floored at zero.
type commissionTotals struct {
	Premium           decimal.Decimal
	CarrierCommission decimal.Decimal
	AgentCommission   decimal.Decimal
	Chargebacks       decimal.Decimal
	ChargebackPremium decimal.Decimal
	ChargebackCount   int
	Net               decimal.Decimal
	GrandTotal        decimal.Decimal
	LineCount         int
}

// computeAgentCommission is the single source of truth for agent pay.
// Import calculation, monthly pay, the agent sheet and payroll submit
// all run through here with different rate/adjustment/bonus inputs.
func computeAgentCommission(lines []statementdomain.StatementLine, rate, adjustment, bonus decimal.Decimal) commissionTotals {
	effective := rate.Add(adjustment)
	var t commissionTotals
	for _, line := range lines {
		amount := lineCommission(line, effective)
		t.Premium = t.Premium.Add(line.PremiumAmount)
		t.CarrierCommission = t.CarrierCommission.Add(line.CommissionAmount)
		if amount.IsNegative() {
			t.Chargebacks = t.Chargebacks.Add(amount)
			t.ChargebackPremium = t.ChargebackPremium.Add(line.PremiumAmount)
			t.ChargebackCount++
		} else {
			t.AgentCommission = t.AgentCommission.Add(amount)
		}
		t.LineCount++
	}
	t.Net = t.AgentCommission.Add(t.Chargebacks)
	t.GrandTotal = t.Net.Add(bonus)
	return t
}

func lineCommission(line statementdomain.StatementLine, effectiveRate decimal.Decimal) decimal.Decimal {
	return line.PremiumAmount.Mul(effectiveRate).Round(2)
}

// CalculateImport computes and persists agent commission on every
// matched line of one import, then reports per-agent totals.
func (s *service) CalculateImport(ctx context.Context, importID snowflake.ID) (*recondomain.ImportCalculation, error) {
	imp, err := s.imports.FindByID(ctx, importID)
	if err != nil {
		return nil, err
	}
	lines, err := s.imports.Lines(ctx, importID)
	if err != nil {
		return nil, err
	}

	grouped, agentIDs := groupByAgent(lines)
	agentsByID, err := s.agents.FindByIDs(ctx, agentIDs)
	if err != nil {
		return nil, err
	}

	result := &recondomain.ImportCalculation{
		ImportID: importID.String(),
		Carrier:  imp.Carrier,
		Period:   imp.Period,
	}
	var updated []statementdomain.StatementLine

	for _, agentID := range agentIDs {
		agentLines := grouped[agentID]
		agent, res, warning, err := s.resolveAgent(ctx, agentID, imp.Period, agentsByID)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
			continue
		}

		totals := computeAgentCommission(agentLines, res.CommissionRate, decimal.Zero, decimal.Zero)
		for _, line := range agentLines {
			line.AgentCommissionRate = res.CommissionRate
			line.AgentCommissionAmount = lineCommission(line, res.CommissionRate)
			updated = append(updated, line)
		}

		summary := buildSummary(agent, *res, decimal.Zero, decimal.Zero, totals)
		summary.CarrierBreakdown = []recondomain.CarrierSubtotal{carrierSubtotal(imp.Carrier, totals)}
		result.Agents = append(result.Agents, summary)
	}

	if len(updated) > 0 {
		if err := s.imports.UpdateLines(ctx, updated); err != nil {
			return nil, err
		}
	}
	sortAgents(result.Agents)

	s.log.Info("import calculated",
		zap.String("import_id", importID.String()),
		zap.Int("agents", len(result.Agents)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// MonthlyPay aggregates every import in a period into per-agent,
// cross-carrier pay summaries. Read-only. The period's lines are read
// once; overrides are folded into that same pass so an overridden
// agent's totals always come from the same snapshot as everyone
// else's.
func (s *service) MonthlyPay(ctx context.Context, pay string, overrides map[snowflake.ID]recondomain.Override) (*recondomain.MonthlyPayResult, error) {
	if !period.Valid(pay) {
		return nil, statementdomain.ErrInvalidPeriod
	}
	imports, err := s.imports.ListByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}
	if len(imports) == 0 {
		return nil, recondomain.ErrNoImportsForPeriod
	}
	lines, err := s.imports.LinesByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}

	carrierOf := make(map[snowflake.ID]string, len(imports))
	for _, imp := range imports {
		carrierOf[imp.ID] = imp.Carrier
	}

	grouped, agentIDs := groupByAgent(lines)
	agentsByID, err := s.agents.FindByIDs(ctx, agentIDs)
	if err != nil {
		return nil, err
	}

	result := &recondomain.MonthlyPayResult{
		Period:        pay,
		PeriodDisplay: period.Display(pay),
		ImportCount:   len(imports),
	}
	carrierTotals := map[string]*recondomain.CarrierSubtotal{}

	for _, agentID := range agentIDs {
		agentLines := grouped[agentID]
		agent, res, warning, err := s.resolveAgent(ctx, agentID, pay, agentsByID)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
			continue
		}

		override := overrides[agentID]
		totals := computeAgentCommission(agentLines, res.CommissionRate, override.RateAdjustment, override.Bonus)
		summary := buildSummary(agent, *res, override.RateAdjustment, override.Bonus, totals)
		summary.CarrierBreakdown = s.carrierBreakdown(agentLines, carrierOf, res.CommissionRate, override.RateAdjustment)

		for _, sub := range summary.CarrierBreakdown {
			agg, ok := carrierTotals[sub.Carrier]
			if !ok {
				agg = &recondomain.CarrierSubtotal{Carrier: sub.Carrier}
				carrierTotals[sub.Carrier] = agg
			}
			agg.Premium = agg.Premium.Add(sub.Premium)
			agg.CarrierCommission = agg.CarrierCommission.Add(sub.CarrierCommission)
			agg.AgentCommission = agg.AgentCommission.Add(sub.AgentCommission)
			agg.Chargebacks = agg.Chargebacks.Add(sub.Chargebacks)
			agg.LineCount += sub.LineCount
		}

		result.Agents = append(result.Agents, summary)
	}

	for _, agg := range carrierTotals {
		result.CarrierTotals = append(result.CarrierTotals, *agg)
	}
	sort.Slice(result.CarrierTotals, func(i, j int) bool {
		return result.CarrierTotals[i].Carrier < result.CarrierTotals[j].Carrier
	})
	sortAgents(result.Agents)

	return result, nil
}

// AgentSheet produces the line-item transcript behind one agent's pay
// for a period, with optional payroll-time rate adjustment and bonus
// applied the same way Submit applies them.
func (s *service) AgentSheet(ctx context.Context, pay string, agentID snowflake.ID, rateAdjustment, bonus decimal.Decimal) (*recondomain.AgentSheet, error) {
	if !period.Valid(pay) {
		return nil, statementdomain.ErrInvalidPeriod
	}
	agent, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, agentdomain.ErrNotFound
		}
		return nil, err
	}
	imports, err := s.imports.ListByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}
	if len(imports) == 0 {
		return nil, recondomain.ErrNoImportsForPeriod
	}
	lines, err := s.imports.LinesByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}

	carrierOf := make(map[snowflake.ID]string, len(imports))
	for _, imp := range imports {
		carrierOf[imp.ID] = imp.Carrier
	}

	var agentLines []statementdomain.StatementLine
	for _, line := range lines {
		if line.IsMatched && line.AssignedAgentID != nil && *line.AssignedAgentID == agentID {
			agentLines = append(agentLines, line)
		}
	}

	res, err := s.tiers.Resolve(ctx, agentID, pay)
	if err != nil {
		return nil, err
	}
	effective := res.CommissionRate.Add(rateAdjustment)

	items := make([]recondomain.SheetLineItem, 0, len(agentLines))
	newBiz := recondomain.CategorySubtotal{Category: "new_business"}
	other := recondomain.CategorySubtotal{Category: "other"}
	for _, line := range agentLines {
		amount := lineCommission(line, effective)
		items = append(items, recondomain.SheetLineItem{
			Carrier:           carrierOf[line.ImportID],
			PolicyNumber:      line.PolicyNumber,
			InsuredName:       line.InsuredName,
			TransactionType:   line.TransactionType,
			EffectiveDate:     line.EffectiveDate,
			Premium:           line.PremiumAmount,
			CarrierCommission: line.CommissionAmount,
			AgentCommission:   amount,
			IsChargeback:      amount.IsNegative(),
		})

		cat := &other
		if line.TransactionType == statementdomain.TxNewBusiness {
			cat = &newBiz
		}
		cat.Premium = cat.Premium.Add(line.PremiumAmount)
		cat.AgentCommission = cat.AgentCommission.Add(amount)
		cat.LineCount++
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsChargeback != items[j].IsChargeback {
			return !items[i].IsChargeback
		}
		if items[i].Carrier != items[j].Carrier {
			return items[i].Carrier < items[j].Carrier
		}
		return items[i].PolicyNumber < items[j].PolicyNumber
	})

	totals := computeAgentCommission(agentLines, res.CommissionRate, rateAdjustment, bonus)
	summary := buildSummary(*agent, *res, rateAdjustment, bonus, totals)
	summary.CarrierBreakdown = s.carrierBreakdown(agentLines, carrierOf, res.CommissionRate, rateAdjustment)

	return &recondomain.AgentSheet{
		Period:        pay,
		PeriodDisplay: period.Display(pay),
		Agent:         summary,
		LineItems:     items,
		Categories:    []recondomain.CategorySubtotal{newBiz, other},
		GeneratedAt:   s.clock.Now(),
	}, nil
}

// resolveAgent looks up the agent and its tier; a missing agent or a
// tier gap comes back as a warning so callers can exclude and continue.
func (s *service) resolveAgent(ctx context.Context, agentID snowflake.ID, pay string, agentsByID map[snowflake.ID]agentdomain.Agent) (agentdomain.Agent, *tierdomain.Resolution, string, error) {
	agent, ok := agentsByID[agentID]
	if !ok {
		return agentdomain.Agent{}, nil, fmt.Sprintf("agent %s not found in directory; excluded from calculation", agentID), nil
	}
	res, err := s.tiers.Resolve(ctx, agentID, pay)
	if err != nil {
		if errors.Is(err, tierdomain.ErrNoTierConfigured) {
			return agentdomain.Agent{}, nil, fmt.Sprintf("no commission tier covers agent %s; excluded from calculation", agent.FullName), nil
		}
		return agentdomain.Agent{}, nil, "", err
	}
	return agent, res, "", nil
}

func (s *service) carrierBreakdown(lines []statementdomain.StatementLine, carrierOf map[snowflake.ID]string, rate, adjustment decimal.Decimal) []recondomain.CarrierSubtotal {
	byCarrier := map[string][]statementdomain.StatementLine{}
	for _, line := range lines {
		carrier := carrierOf[line.ImportID]
		byCarrier[carrier] = append(byCarrier[carrier], line)
	}
	out := make([]recondomain.CarrierSubtotal, 0, len(byCarrier))
	for carrier, subset := range byCarrier {
		out = append(out, carrierSubtotal(carrier, computeAgentCommission(subset, rate, adjustment, decimal.Zero)))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AgentCommission.Equal(out[j].AgentCommission) {
			return out[i].AgentCommission.GreaterThan(out[j].AgentCommission)
		}
		return out[i].Carrier < out[j].Carrier
	})
	return out
}

func carrierSubtotal(carrier string, t commissionTotals) recondomain.CarrierSubtotal {
	return recondomain.CarrierSubtotal{
		Carrier:           carrier,
		Premium:           t.Premium,
		CarrierCommission: t.CarrierCommission,
		AgentCommission:   t.Net,
		Chargebacks:       t.Chargebacks,
		LineCount:         t.LineCount,
	}
}

func buildSummary(agent agentdomain.Agent, res tierdomain.Resolution, adjustment, bonus decimal.Decimal, t commissionTotals) recondomain.AgentSummary {
	return recondomain.AgentSummary{
		AgentID:            agent.ID.String(),
		AgentName:          agent.FullName,
		AgentRole:          string(agent.Role),
		TierLevel:          res.TierLevel,
		BaseCommissionRate: res.CommissionRate,
		RateAdjustment:     adjustment,
		CommissionRate:     res.CommissionRate.Add(adjustment),
		TierPremium:        res.TierPremium,
		TierBasedOnPeriod:  res.BasedOnPeriod,

		TotalPremium:           t.Premium,
		CarrierCommissionTotal: t.CarrierCommission,
		TotalAgentCommission:   t.AgentCommission,
		Chargebacks:            t.Chargebacks,
		ChargebackPremium:      t.ChargebackPremium,
		ChargebackCount:        t.ChargebackCount,
		NetAgentCommission:     t.Net,
		Bonus:                  bonus,
		GrandTotal:             t.GrandTotal,
		LineCount:              t.LineCount,
	}
}

// groupByAgent buckets matched lines by assigned agent. The returned
// id slice is sorted for deterministic iteration.
func groupByAgent(lines []statementdomain.StatementLine) (map[snowflake.ID][]statementdomain.StatementLine, []snowflake.ID) {
	grouped := map[snowflake.ID][]statementdomain.StatementLine{}
	for _, line := range lines {
		if !line.IsMatched || line.AssignedAgentID == nil {
			continue
		}
		grouped[*line.AssignedAgentID] = append(grouped[*line.AssignedAgentID], line)
	}
	ids := make([]snowflake.ID, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return grouped, ids
}

func sortAgents(agents []recondomain.AgentSummary) {
	sort.SliceStable(agents, func(i, j int) bool {
		if !agents[i].NetAgentCommission.Equal(agents[j].NetAgentCommission) {
			return agents[i].NetAgentCommission.GreaterThan(agents[j].NetAgentCommission)
		}
		return agents[i].AgentName < agents[j].AgentName
	})
}
