package repository

import (
	"context"
	"time"

	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) saledomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*saledomain.Sale, error) {
	var sale saledomain.Sale
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindByPolicyNumber(ctx context.Context, policyNumber string) (*saledomain.Sale, error) {
	normalized := saledomain.NormalizePolicyNumber(policyNumber)
	if normalized == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var sale saledomain.Sale
	err := r.db.WithContext(ctx).
		Where("LTRIM(UPPER(TRIM(policy_number)), '0') = ?", normalized).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) SearchCandidates(ctx context.Context, filter saledomain.CandidateFilter) ([]saledomain.Sale, error) {
	stmt := r.db.WithContext(ctx).Model(&saledomain.Sale{})
	if filter.Carrier != "" {
		stmt = stmt.Where("carrier = ?", filter.Carrier)
	}
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}

	var sales []saledomain.Sale
	if err := stmt.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) SumWrittenPremium(ctx context.Context, producerID snowflake.ID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&saledomain.Sale{}).
		Select("SUM(written_premium)").
		Where("producer_id = ? AND sale_date >= ? AND sale_date < ?", producerID, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
