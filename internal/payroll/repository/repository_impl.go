package repository

import (
	"context"
	"errors"
	"time"

	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	"github.com/agencydesk/agencydesk/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) payrolldomain.Repository {
	return &repository{db: conn}
}

func (r *repository) FindByPeriod(ctx context.Context, period string) (*payrolldomain.PayrollRecord, error) {
	var record payrolldomain.PayrollRecord
	err := r.db.WithContext(ctx).
		Where("period = ?", period).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrolldomain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) History(ctx context.Context) ([]payrolldomain.PayrollRecord, error) {
	var records []payrolldomain.PayrollRecord
	err := r.db.WithContext(ctx).
		Order("period DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) AgentLines(ctx context.Context, recordID snowflake.ID) ([]payrolldomain.PayrollAgentLine, error) {
	var lines []payrolldomain.PayrollAgentLine
	err := r.db.WithContext(ctx).
		Where("payroll_record_id = ?", recordID).
		Order("net_agent_pay DESC, agent_name ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) ReplaceSnapshot(ctx context.Context, record *payrolldomain.PayrollRecord, lines []payrolldomain.PayrollAgentLine, saleIDs []snowflake.ID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing payrolldomain.PayrollRecord
		err := tx.Where("period = ?", record.Period).First(&existing).Error
		switch {
		case err == nil:
			if existing.IsLocked {
				return payrolldomain.ErrPayrollLocked
			}
			if err := tx.Where("payroll_record_id = ?", existing.ID).
				Delete(&payrolldomain.PayrollAgentLine{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&payrolldomain.PayrollRecord{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first submit for this period
		default:
			return err
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		if len(saleIDs) == 0 {
			return nil
		}
		// contributing sales go back to pending for the new snapshot;
		// sales already paid keep their paid status
		return tx.Model(&saledomain.Sale{}).
			Where("id IN ?", saleIDs).
			Where("commission_status <> ?", saledomain.CommissionPaid).
			Update("commission_status", saledomain.CommissionPending).Error
	})
	if err != nil {
		// the unique period index breaks ties between concurrent submits
		if db.IsDuplicateKeyErr(err) {
			return payrolldomain.ErrPayrollLocked
		}
		return err
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, recordID snowflake.ID, saleIDs []snowflake.ID, period string, paidAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&payrolldomain.PayrollRecord{}).
			Where("id = ?", recordID).
			Updates(map[string]interface{}{
				"status":     payrolldomain.PayrollPaid,
				"paid_at":    paidAt,
				"updated_at": paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return payrolldomain.ErrNotFound
		}
		if err := tx.Model(&payrolldomain.PayrollAgentLine{}).
			Where("payroll_record_id = ?", recordID).
			Updates(map[string]interface{}{
				"commission_status": "paid",
				"paid_at":           paidAt,
			}).Error; err != nil {
			return err
		}
		if len(saleIDs) == 0 {
			return nil
		}
		// the sales settle in the same transaction as the record; a
		// failure here rolls the whole mark-paid back
		return tx.Model(&saledomain.Sale{}).
			Where("id IN ?", saleIDs).
			Updates(map[string]interface{}{
				"commission_status":      saledomain.CommissionPaid,
				"commission_paid_at":     paidAt,
				"commission_paid_period": period,
				"updated_at":             paidAt,
			}).Error
	})
}

func (r *repository) Unlock(ctx context.Context, recordID snowflake.ID) error {
	res := r.db.WithContext(ctx).
		Model(&payrolldomain.PayrollRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"status":       payrolldomain.PayrollDraft,
			"is_locked":    false,
			"submitted_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrolldomain.ErrNotFound
	}
	return nil
}
