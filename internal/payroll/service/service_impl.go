package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agencydesk/agencydesk/internal/clock"
	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	"github.com/agencydesk/agencydesk/internal/period"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repository payrolldomain.Repository
	Recon      recondomain.Service
	Imports    statementdomain.Repository
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
}

type service struct {
	repo    payrolldomain.Repository
	recon   recondomain.Service
	imports statementdomain.Repository
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
}

func NewService(p ServiceParam) payrolldomain.Service {
	return &service{
		repo:    p.Repository,
		recon:   p.Recon,
		imports: p.Imports,
		log:     p.Log,
		genID:   p.GenID,
		clock:   p.Clock,
	}
}

func (s *service) Submit(ctx context.Context, pay string, overrides map[string]payrolldomain.AgentOverride, submittedBy snowflake.ID) (*payrolldomain.Detail, error) {
	if !period.Valid(pay) {
		return nil, statementdomain.ErrInvalidPeriod
	}

	if existing, err := s.repo.FindByPeriod(ctx, pay); err == nil && existing.IsLocked {
		return nil, payrolldomain.ErrPayrollLocked
	}

	reconOverrides := make(map[snowflake.ID]recondomain.Override, len(overrides))
	for key, override := range overrides {
		agentID, err := snowflake.ParseString(key)
		if err != nil {
			return nil, err
		}
		reconOverrides[agentID] = recondomain.Override{
			RateAdjustment: override.RateAdjustment,
			Bonus:          override.Bonus,
		}
	}

	monthly, err := s.recon.MonthlyPay(ctx, pay, reconOverrides)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	record := payrolldomain.PayrollRecord{
		ID:            s.genID.Generate(),
		Period:        pay,
		PeriodDisplay: monthly.PeriodDisplay,
		Status:        payrolldomain.PayrollSubmitted,
		IsLocked:      true,
		SubmittedAt:   &now,
		SubmittedByID: &submittedBy,
		TotalCarriers: len(monthly.CarrierTotals),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lines := make([]payrolldomain.PayrollAgentLine, 0, len(monthly.Agents))
	for _, summary := range monthly.Agents {
		line, err := s.toAgentLine(record.ID, summary, now)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)

		record.TotalAgents++
		record.TotalPremium = record.TotalPremium.Add(summary.TotalPremium)
		record.TotalAgentPay = record.TotalAgentPay.Add(summary.GrandTotal)
		record.TotalChargebacks = record.TotalChargebacks.Add(summary.Chargebacks)
	}

	saleIDs, err := s.matchedSaleIDs(ctx, pay)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceSnapshot(ctx, &record, lines, saleIDs); err != nil {
		return nil, err
	}

	s.log.Info("payroll submitted",
		zap.String("period", pay),
		zap.Int("agents", record.TotalAgents),
		zap.String("total_pay", record.TotalAgentPay.StringFixed(2)),
		zap.String("submitted_by", submittedBy.String()),
	)

	return &payrolldomain.Detail{Record: record, Agents: lines}, nil
}

func (s *service) MarkPaid(ctx context.Context, pay string) (*payrolldomain.Detail, error) {
	record, err := s.repo.FindByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}
	switch record.Status {
	case payrolldomain.PayrollDraft:
		return nil, payrolldomain.ErrPayrollNotSubmitted
	case payrolldomain.PayrollPaid:
		return nil, payrolldomain.ErrPayrollAlreadyPaid
	}

	saleIDs, err := s.matchedSaleIDs(ctx, pay)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := s.repo.MarkPaid(ctx, record.ID, saleIDs, pay, now); err != nil {
		return nil, err
	}

	s.log.Info("payroll marked paid",
		zap.String("period", pay),
		zap.Int("sales_paid", len(saleIDs)),
	)
	return s.Detail(ctx, pay)
}

func (s *service) Unlock(ctx context.Context, pay string) (*payrolldomain.Detail, error) {
	record, err := s.repo.FindByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}
	if record.Status == payrolldomain.PayrollDraft {
		return nil, payrolldomain.ErrPayrollNotSubmitted
	}

	if err := s.repo.Unlock(ctx, record.ID); err != nil {
		return nil, err
	}

	// sales already marked paid stay paid; unlock only reopens the
	// snapshot for correction
	s.log.Info("payroll unlocked", zap.String("period", pay))
	return s.Detail(ctx, pay)
}

func (s *service) History(ctx context.Context) ([]payrolldomain.PayrollRecord, error) {
	return s.repo.History(ctx)
}

func (s *service) Detail(ctx context.Context, pay string) (*payrolldomain.Detail, error) {
	record, err := s.repo.FindByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.AgentLines(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	return &payrolldomain.Detail{Record: *record, Agents: lines}, nil
}

func (s *service) toAgentLine(recordID snowflake.ID, summary recondomain.AgentSummary, now time.Time) (payrolldomain.PayrollAgentLine, error) {
	agentID, err := snowflake.ParseString(summary.AgentID)
	if err != nil {
		return payrolldomain.PayrollAgentLine{}, err
	}
	breakdown, err := json.Marshal(summary.CarrierBreakdown)
	if err != nil {
		return payrolldomain.PayrollAgentLine{}, err
	}
	return payrolldomain.PayrollAgentLine{
		ID:              s.genID.Generate(),
		PayrollRecordID: recordID,
		AgentID:         agentID,
		AgentName:       summary.AgentName,
		AgentRole:       summary.AgentRole,

		TierLevel:      summary.TierLevel,
		CommissionRate: summary.CommissionRate,

		TotalPremium:         summary.TotalPremium,
		TotalAgentCommission: summary.TotalAgentCommission,
		Chargebacks:          summary.Chargebacks,
		ChargebackPremium:    summary.ChargebackPremium,
		ChargebackCount:      summary.ChargebackCount,
		NetAgentPay:          summary.NetAgentCommission,
		LineCount:            summary.LineCount,

		RateAdjustment: summary.RateAdjustment,
		Bonus:          summary.Bonus,
		GrandTotal:     summary.GrandTotal,

		CarrierBreakdown: breakdown,
		CommissionStatus: "pending",
		CreatedAt:        now,
	}, nil
}

// matchedSaleIDs collects the distinct sales matched into any import of
// the period.
func (s *service) matchedSaleIDs(ctx context.Context, pay string) ([]snowflake.ID, error) {
	lines, err := s.imports.LinesByPeriod(ctx, pay)
	if err != nil {
		return nil, err
	}
	seen := map[snowflake.ID]struct{}{}
	var ids []snowflake.ID
	for _, line := range lines {
		if !line.IsMatched || line.MatchedSaleID == nil {
			continue
		}
		if _, ok := seen[*line.MatchedSaleID]; ok {
			continue
		}
		seen[*line.MatchedSaleID] = struct{}{}
		ids = append(ids, *line.MatchedSaleID)
	}
	return ids, nil
}
