package service

import (
	"context"
	"sort"

	"github.com/agencydesk/agencydesk/internal/clock"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/period"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/agencydesk/agencydesk/internal/statement/parser"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repository statementdomain.Repository
	Cfg        config.Config
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
}

type service struct {
	repo  statementdomain.Repository
	cfg   config.Config
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p ServiceParam) statementdomain.Service {
	return &service{
		repo:  p.Repository,
		cfg:   p.Cfg,
		log:   p.Log,
		genID: p.GenID,
		clock: p.Clock,
	}
}

// Upload parses a carrier statement and persists the import with all of
// its lines atomically. A file that fails to parse leaves no trace.
func (s *service) Upload(ctx context.Context, req statementdomain.UploadRequest) (*statementdomain.UploadResult, error) {
	if !statementdomain.ValidCarrier(req.Carrier) {
		return nil, statementdomain.ErrInvalidCarrier
	}
	if !period.Valid(req.Period) {
		return nil, statementdomain.ErrInvalidPeriod
	}
	format := statementdomain.FileFormat(req.Filename)
	if format == "" {
		return nil, statementdomain.ErrUnsupportedFormat
	}
	if len(req.Data) == 0 {
		return nil, statementdomain.ErrEmptyFile
	}

	var carrierAdvisory *statementdomain.CarrierAdvisory
	if detected := parser.DetectCarrier(req.Data, req.Filename); detected != "" && detected != req.Carrier {
		s.log.Warn("carrier selection disagrees with file fingerprint",
			zap.String("selected", req.Carrier),
			zap.String("detected", detected),
		)
		carrierAdvisory = &statementdomain.CarrierAdvisory{
			Selected: req.Carrier,
			Detected: detected,
		}
	}

	var duplicateAdvisory *statementdomain.DuplicateAdvisory
	existing, err := s.repo.FindByCarrierPeriod(ctx, req.Carrier, req.Period)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		ids := make([]string, 0, len(existing))
		for _, imp := range existing {
			ids = append(ids, imp.ID.String())
		}
		duplicateAdvisory = &statementdomain.DuplicateAdvisory{
			Carrier:           req.Carrier,
			Period:            req.Period,
			ExistingImportIDs: ids,
		}
	}

	records, err := parser.ForCarrier(req.Carrier).Parse(req.Data, req.Filename)
	if err != nil {
		s.log.Error("statement parse failed",
			zap.String("carrier", req.Carrier),
			zap.String("filename", req.Filename),
			zap.Error(err),
		)
		return nil, err
	}

	now := s.clock.Now()
	imp := statementdomain.StatementImport{
		ID:                    s.genID.Generate(),
		Filename:              req.Filename,
		FileFormat:            format,
		FileSize:              int64(len(req.Data)),
		Carrier:               req.Carrier,
		Period:                req.Period,
		Status:                statementdomain.ImportProcessed,
		TotalRows:             len(records),
		UnmatchedRows:         len(records),
		ProcessingStartedAt:   &now,
		ProcessingCompletedAt: &now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	lines := make([]statementdomain.StatementLine, 0, len(records))
	for _, rec := range records {
		imp.TotalPremium = imp.TotalPremium.Add(rec.PremiumAmount)
		imp.TotalCommission = imp.TotalCommission.Add(rec.CommissionAmount)

		lines = append(lines, statementdomain.StatementLine{
			ID:                 s.genID.Generate(),
			ImportID:           imp.ID,
			PolicyNumber:       rec.PolicyNumber,
			InsuredName:        rec.InsuredName,
			TransactionType:    rec.TransactionType,
			TransactionTypeRaw: rec.TransactionTypeRaw,
			TransactionDate:    rec.TransactionDate,
			EffectiveDate:      rec.EffectiveDate,
			PremiumAmount:      rec.PremiumAmount,
			CommissionRate:     rec.CommissionRate,
			CommissionAmount:   rec.CommissionAmount,
			ProducerName:       rec.ProducerName,
			ProductType:        rec.ProductType,
			LineOfBusiness:     rec.LineOfBusiness,
			State:              rec.State,
			TermMonths:         rec.TermMonths,
			RawData:            rec.RawData,
			CreatedAt:          now,
		})
	}

	if err := s.repo.CreateWithLines(ctx, &imp, lines); err != nil {
		return nil, err
	}

	s.log.Info("statement imported",
		zap.String("import_id", imp.ID.String()),
		zap.String("carrier", imp.Carrier),
		zap.String("period", imp.Period),
		zap.Int("rows", imp.TotalRows),
		zap.String("total_premium", imp.TotalPremium.StringFixed(2)),
	)

	return &statementdomain.UploadResult{
		Import:            toSummary(imp),
		CarrierAdvisory:   carrierAdvisory,
		DuplicateAdvisory: duplicateAdvisory,
	}, nil
}

func (s *service) List(ctx context.Context) ([]statementdomain.ImportSummary, error) {
	imports, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]statementdomain.ImportSummary, 0, len(imports))
	for _, imp := range imports {
		out = append(out, toSummary(imp))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*statementdomain.ImportDetail, error) {
	imp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.Lines(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := statementdomain.ImportDetail{Import: toSummary(*imp)}
	byType := make(map[statementdomain.TransactionType]*statementdomain.TypeBreakdown)

	for _, line := range lines {
		view := toLineView(line)
		if line.IsMatched {
			detail.MatchedLines = append(detail.MatchedLines, view)
		} else {
			detail.UnmatchedLines = append(detail.UnmatchedLines, view)
		}

		agg, ok := byType[line.TransactionType]
		if !ok {
			agg = &statementdomain.TypeBreakdown{
				TransactionType: line.TransactionType,
				Premium:         decimal.Zero,
				Commission:      decimal.Zero,
			}
			byType[line.TransactionType] = agg
		}
		agg.Count++
		agg.Premium = agg.Premium.Add(line.PremiumAmount)
		agg.Commission = agg.Commission.Add(line.CommissionAmount)
	}

	for _, agg := range byType {
		detail.TypeBreakdown = append(detail.TypeBreakdown, *agg)
	}
	sort.Slice(detail.TypeBreakdown, func(i, j int) bool {
		return detail.TypeBreakdown[i].TransactionType < detail.TypeBreakdown[j].TransactionType
	})

	return &detail, nil
}

func (s *service) Delete(ctx context.Context, id snowflake.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("statement import deleted", zap.String("import_id", id.String()))
	return nil
}

func toSummary(imp statementdomain.StatementImport) statementdomain.ImportSummary {
	return statementdomain.ImportSummary{
		ID:              imp.ID.String(),
		Filename:        imp.Filename,
		FileFormat:      imp.FileFormat,
		Carrier:         imp.Carrier,
		Period:          imp.Period,
		PeriodDisplay:   period.Display(imp.Period),
		Status:          imp.Status,
		TotalRows:       imp.TotalRows,
		MatchedRows:     imp.MatchedRows,
		UnmatchedRows:   imp.UnmatchedRows,
		TotalPremium:    imp.TotalPremium,
		TotalCommission: imp.TotalCommission,
		CreatedAt:       imp.CreatedAt,
	}
}

func toLineView(line statementdomain.StatementLine) statementdomain.LineView {
	view := statementdomain.LineView{
		ID:                 line.ID.String(),
		PolicyNumber:       line.PolicyNumber,
		InsuredName:        line.InsuredName,
		TransactionType:    line.TransactionType,
		TransactionTypeRaw: line.TransactionTypeRaw,
		EffectiveDate:      line.EffectiveDate,
		PremiumAmount:      line.PremiumAmount,
		CommissionRate:     line.CommissionRate,
		CommissionAmount:   line.CommissionAmount,
		ProducerName:       line.ProducerName,
		State:              line.State,
		IsMatched:          line.IsMatched,
		MatchConfidence:    line.MatchConfidence,
	}
	if line.MatchedSaleID != nil {
		view.MatchedSaleID = line.MatchedSaleID.String()
	}
	if line.AssignedAgentID != nil {
		view.AssignedAgentID = line.AssignedAgentID.String()
	}
	return view
}
