package service

import (
	"context"
	"testing"
	"time"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	agentrepo "github.com/agencydesk/agencydesk/internal/agent/repository"
	"github.com/agencydesk/agencydesk/internal/clock"
	"github.com/agencydesk/agencydesk/internal/config"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	salerepo "github.com/agencydesk/agencydesk/internal/sale/repository"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	statementrepo "github.com/agencydesk/agencydesk/internal/statement/repository"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	tierrepo "github.com/agencydesk/agencydesk/internal/tier/repository"
	tierservice "github.com/agencydesk/agencydesk/internal/tier/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     recondomain.Service
	imports statementdomain.Repository
	clock   *clock.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&agentdomain.Agent{},
		&saledomain.Sale{},
		&tierdomain.CommissionTier{},
		&statementdomain.StatementImport{},
		&statementdomain.StatementLine{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	sales := salerepo.NewRepository(db)
	imports := statementrepo.NewRepository(db)
	fake := clock.NewFakeClock(time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		Imports: imports,
		Sales:   sales,
		Agents:  agentrepo.NewRepository(db),
		Tiers: tierservice.NewResolver(tierservice.ResolverParam{
			Repository: tierrepo.NewRepository(db),
			Sales:      sales,
		}),
		Cfg:   config.Config{NameMatchThreshold: 0.85},
		Log:   zap.NewNop(),
		Clock: fake,
	})

	return &testEnv{db: db, node: node, svc: svc, imports: imports, clock: fake}
}

func (e *testEnv) seedAgent(t *testing.T, name string) agentdomain.Agent {
	t.Helper()
	agent := agentdomain.Agent{
		ID:       e.node.Generate(),
		Email:    name + "@agency.test",
		Username: name,
		FullName: name,
		Role:     agentdomain.RoleProducer,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(&agent).Error)
	return agent
}

func (e *testEnv) seedSale(t *testing.T, producerID snowflake.ID, policy, client, carrier, state string, premium float64, saleDate time.Time) saledomain.Sale {
	t.Helper()
	sale := saledomain.Sale{
		ID:             e.node.Generate(),
		PolicyNumber:   policy,
		Carrier:        carrier,
		State:          state,
		WrittenPremium: decimal.NewFromFloat(premium),
		ProducerID:     producerID,
		ClientName:     client,
		SaleDate:       saleDate,
	}
	require.NoError(t, e.db.Create(&sale).Error)
	return sale
}

func (e *testEnv) seedTier(t *testing.T, level int, min float64, max *float64, rate float64) {
	t.Helper()
	tier := tierdomain.CommissionTier{
		ID:                e.node.Generate(),
		TierLevel:         level,
		MinWrittenPremium: decimal.NewFromFloat(min),
		CommissionRate:    decimal.NewFromFloat(rate),
		IsActive:          true,
	}
	if max != nil {
		m := decimal.NewFromFloat(*max)
		tier.MaxWrittenPremium = &m
	}
	require.NoError(t, e.db.Create(&tier).Error)
}

type lineSpec struct {
	policy  string
	insured string
	txType  statementdomain.TransactionType
	premium float64
	rate    float64
	state   string
}

func (e *testEnv) seedImport(t *testing.T, carrier, period string, specs []lineSpec) snowflake.ID {
	t.Helper()
	imp := statementdomain.StatementImport{
		ID:         e.node.Generate(),
		Filename:   carrier + ".csv",
		FileFormat: "csv",
		Carrier:    carrier,
		Period:     period,
		Status:     statementdomain.ImportProcessed,
		TotalRows:  len(specs),
	}
	lines := make([]statementdomain.StatementLine, 0, len(specs))
	for _, spec := range specs {
		premium := decimal.NewFromFloat(spec.premium)
		rate := decimal.NewFromFloat(spec.rate)
		lines = append(lines, statementdomain.StatementLine{
			ID:               e.node.Generate(),
			ImportID:         imp.ID,
			PolicyNumber:     spec.policy,
			InsuredName:      spec.insured,
			TransactionType:  spec.txType,
			PremiumAmount:    premium,
			CommissionRate:   rate,
			CommissionAmount: premium.Mul(rate).Round(2),
			State:            spec.state,
		})
	}
	require.NoError(t, e.imports.CreateWithLines(context.Background(), &imp, lines))
	return imp.ID
}

func TestMatchExactNormalizesPolicyNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	env.seedSale(t, agent.ID, "AB12345", "Alice Smith", "grange", "OH", 1000, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "  0000ab12345 ", insured: "Someone Else", txType: statementdomain.TxRenewal, premium: 500, rate: 0.1},
	})

	res, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchedTotal)
	assert.Equal(t, 1, res.NewlyMatched)
	assert.Zero(t, res.Unmatched)

	lines, err := env.imports.Lines(ctx, importID)
	require.NoError(t, err)
	require.NotNil(t, lines[0].AssignedAgentID)
	assert.Equal(t, agent.ID, *lines[0].AssignedAgentID)
	assert.Equal(t, statementdomain.MatchExact, lines[0].MatchConfidence)

	imp, err := env.imports.FindByID(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, statementdomain.ImportReconciled, imp.Status)
	assert.Equal(t, 1, imp.MatchedRows)
}

func TestMatchFuzzyThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	env.seedSale(t, agent.ID, "POL-100", "Jonathan Smitherton", "safeco", "WA", 1200, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	importID := env.seedImport(t, "safeco", "2025-02", []lineSpec{
		// one dropped letter: similarity just above 0.85
		{policy: "UNKNOWN-1", insured: "Jonathan Smitherto", txType: statementdomain.TxRenewal, premium: 600, rate: 0.1, state: "WA"},
		// far below threshold
		{policy: "UNKNOWN-2", insured: "Completely Different", txType: statementdomain.TxRenewal, premium: 600, rate: 0.1, state: "WA"},
	})

	res, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchedTotal)
	assert.Equal(t, 1, res.Unmatched)

	lines, err := env.imports.Lines(ctx, importID)
	require.NoError(t, err)
	for _, line := range lines {
		assert.Equal(t, line.IsMatched, line.AssignedAgentID != nil)
		if line.PolicyNumber == "UNKNOWN-1" {
			assert.Equal(t, statementdomain.MatchFuzzy, line.MatchConfidence)
		}
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	agent := env.seedAgent(t, "Dana Reed")
	env.seedSale(t, agent.ID, "POL-200", "Bob Jones", "grange", "OH", 900, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "POL-200", insured: "Bob Jones", txType: statementdomain.TxRenewal, premium: 450, rate: 0.1},
		{policy: "NOPE-1", insured: "Nobody Known", txType: statementdomain.TxRenewal, premium: 100, rate: 0.1},
	})

	first, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.NewlyMatched)

	second, err := env.svc.Match(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.MatchedTotal)
	assert.Zero(t, second.NewlyMatched)
	assert.Equal(t, 1, second.Unmatched)
}

func TestManualMatchIsAuthoritative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	right := env.seedAgent(t, "Dana Reed")
	wrong := env.seedAgent(t, "Casey Lake")
	chosen := env.seedSale(t, right.ID, "POL-300", "Carol White", "grange", "OH", 700, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC))
	env.seedSale(t, wrong.ID, "POL-301", "Carol White", "grange", "OH", 700, time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC))

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "NO-SUCH", insured: "Carol White", txType: statementdomain.TxRenewal, premium: 350, rate: 0.1},
	})

	lines, err := env.imports.Lines(ctx, importID)
	require.NoError(t, err)

	res, err := env.svc.ManualMatch(ctx, lines[0].ID, chosen.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchedTotal)

	// a later automatic pass must not overwrite the operator's pick
	_, err = env.svc.Match(ctx, importID)
	require.NoError(t, err)

	lines, err = env.imports.Lines(ctx, importID)
	require.NoError(t, err)
	assert.Equal(t, statementdomain.MatchManual, lines[0].MatchConfidence)
	require.NotNil(t, lines[0].MatchedSaleID)
	assert.Equal(t, chosen.ID, *lines[0].MatchedSaleID)
	assert.Equal(t, right.ID, *lines[0].AssignedAgentID)
}

func TestManualMatchUnknownSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	importID := env.seedImport(t, "grange", "2025-02", []lineSpec{
		{policy: "P-1", insured: "Anyone", txType: statementdomain.TxRenewal, premium: 100, rate: 0.1},
	})
	lines, err := env.imports.Lines(ctx, importID)
	require.NoError(t, err)

	_, err = env.svc.ManualMatch(ctx, lines[0].ID, env.node.Generate())
	assert.ErrorIs(t, err, saledomain.ErrNotFound)

	_, err = env.svc.ManualMatch(ctx, env.node.Generate(), env.node.Generate())
	assert.ErrorIs(t, err, statementdomain.ErrLineNotFound)
}
