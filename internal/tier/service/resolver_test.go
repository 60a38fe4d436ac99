package service

import (
	"context"
	"testing"
	"time"

	salerepository "github.com/agencydesk/agencydesk/internal/sale/repository"
	"github.com/agencydesk/agencydesk/internal/seed"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	tierrepository "github.com/agencydesk/agencydesk/internal/tier/repository"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tierdomain.CommissionTier{},
		&saledomain.Sale{},
	))
	return db
}

func newResolver(db *gorm.DB) tierdomain.Resolver {
	return NewResolver(ResolverParam{
		Repository: tierrepository.NewRepository(db),
		Sales:      salerepository.NewRepository(db),
	})
}

func seedSale(t *testing.T, db *gorm.DB, node *snowflake.Node, producerID snowflake.ID, premium string, saleDate time.Time) {
	t.Helper()
	amount, err := decimal.NewFromString(premium)
	require.NoError(t, err)
	require.NoError(t, db.Create(&saledomain.Sale{
		ID:             node.Generate(),
		PolicyNumber:   node.Generate().String(),
		Carrier:        "progressive",
		WrittenPremium: amount,
		ProducerID:     producerID,
		SaleDate:       saleDate,
		Status:         "active",
	}).Error)
}

func TestResolve_PriorMonthLookback(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, seed.EnsureDefaultTiers(db))

	node, _ := snowflake.NewNode(1)
	agentID := node.Generate()

	// December production decides the January tier; January production is ignored.
	seedSale(t, db, node, agentID, "120000", time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC))
	seedSale(t, db, node, agentID, "500000", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	res, err := newResolver(db).Resolve(context.Background(), agentID, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 5, res.TierLevel)
	assert.True(t, res.CommissionRate.Equal(decimal.RequireFromString("0.06")), res.CommissionRate.String())
	assert.True(t, res.TierPremium.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, "2023-12", res.BasedOnPeriod)
}

func TestResolve_BoundaryIsMinInclusive(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, seed.EnsureDefaultTiers(db))

	node, _ := snowflake.NewNode(1)

	cases := []struct {
		premium string
		level   int
		rate    string
	}{
		{"0", 1, "0.03"},
		{"39999.99", 1, "0.03"},
		{"40000", 2, "0.03"},
		{"59999.99", 3, "0.04"},
		{"60000", 4, "0.05"},
		{"200000", 7, "0.08"},
		{"9999999", 7, "0.08"},
	}

	for _, tc := range cases {
		agentID := node.Generate()
		if tc.premium != "0" {
			seedSale(t, db, node, agentID, tc.premium, time.Date(2023, 12, 10, 0, 0, 0, 0, time.UTC))
		}

		res, err := newResolver(db).Resolve(context.Background(), agentID, "2024-01")
		require.NoError(t, err, "premium %s", tc.premium)
		assert.Equal(t, tc.level, res.TierLevel, "premium %s", tc.premium)
		assert.True(t, res.CommissionRate.Equal(decimal.RequireFromString(tc.rate)), "premium %s", tc.premium)
	}
}

func TestResolve_ZeroPriorPremiumIsLowestTier(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, seed.EnsureDefaultTiers(db))

	node, _ := snowflake.NewNode(1)

	res, err := newResolver(db).Resolve(context.Background(), node.Generate(), "2024-06")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TierLevel)
	assert.True(t, res.TierPremium.IsZero())
	assert.Equal(t, "2024-05", res.BasedOnPeriod)
}

func TestResolve_EmptyScheduleFails(t *testing.T) {
	db := newTestDB(t)

	node, _ := snowflake.NewNode(1)
	_, err := newResolver(db).Resolve(context.Background(), node.Generate(), "2024-01")
	assert.ErrorIs(t, err, tierdomain.ErrNoTierConfigured)
}

func TestResolve_ScheduleGapFails(t *testing.T) {
	db := newTestDB(t)

	node, _ := snowflake.NewNode(1)
	max := decimal.NewFromInt(40000)
	require.NoError(t, db.Create(&tierdomain.CommissionTier{
		ID:                node.Generate(),
		TierLevel:         1,
		MinWrittenPremium: decimal.Zero,
		MaxWrittenPremium: &max,
		CommissionRate:    decimal.RequireFromString("0.03"),
		IsActive:          true,
	}).Error)

	agentID := node.Generate()
	seedSale(t, db, node, agentID, "75000", time.Date(2023, 12, 10, 0, 0, 0, 0, time.UTC))

	_, err := newResolver(db).Resolve(context.Background(), agentID, "2024-01")
	assert.ErrorIs(t, err, tierdomain.ErrNoTierConfigured)
}

func TestResolve_RatesMonotonicInDefaultSchedule(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, seed.EnsureDefaultTiers(db))

	repo := tierrepository.NewRepository(db)
	tiers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 7)

	for i := 1; i < len(tiers); i++ {
		assert.True(t, tiers[i].CommissionRate.GreaterThanOrEqual(tiers[i-1].CommissionRate))
		require.NotNil(t, tiers[i-1].MaxWrittenPremium)
		assert.True(t, tiers[i].MinWrittenPremium.Equal(*tiers[i-1].MaxWrittenPremium),
			"schedule must be contiguous at level %d", tiers[i].TierLevel)
	}
	assert.Nil(t, tiers[len(tiers)-1].MaxWrittenPremium)
}
