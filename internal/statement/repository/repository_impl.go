package repository

import (
	"context"

	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) statementdomain.Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithLines(ctx context.Context, imp *statementdomain.StatementImport, lines []statementdomain.StatementLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(imp).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.CreateInBatches(lines, 200).Error
	})
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*statementdomain.StatementImport, error) {
	var imp statementdomain.StatementImport
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&imp).Error
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *repository) List(ctx context.Context) ([]statementdomain.StatementImport, error) {
	var imports []statementdomain.StatementImport
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&imports).Error
	if err != nil {
		return nil, err
	}
	return imports, nil
}

func (r *repository) ListByPeriod(ctx context.Context, period string) ([]statementdomain.StatementImport, error) {
	var imports []statementdomain.StatementImport
	err := r.db.WithContext(ctx).
		Where("period = ?", period).
		Order("created_at ASC").
		Find(&imports).Error
	if err != nil {
		return nil, err
	}
	return imports, nil
}

func (r *repository) FindByCarrierPeriod(ctx context.Context, carrier, period string) ([]statementdomain.StatementImport, error) {
	var imports []statementdomain.StatementImport
	err := r.db.WithContext(ctx).
		Where("carrier = ? AND period = ?", carrier, period).
		Order("created_at ASC").
		Find(&imports).Error
	if err != nil {
		return nil, err
	}
	return imports, nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("import_id = ?", id).Delete(&statementdomain.StatementLine{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&statementdomain.StatementImport{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return statementdomain.ErrNotFound
		}
		return nil
	})
}

func (r *repository) Lines(ctx context.Context, importID snowflake.ID) ([]statementdomain.StatementLine, error) {
	var lines []statementdomain.StatementLine
	err := r.db.WithContext(ctx).
		Where("import_id = ?", importID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) LinesByPeriod(ctx context.Context, period string) ([]statementdomain.StatementLine, error) {
	var lines []statementdomain.StatementLine
	err := r.db.WithContext(ctx).
		Joins("JOIN statement_imports ON statement_imports.id = statement_lines.import_id").
		Where("statement_imports.period = ?", period).
		Order("statement_lines.id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLine(ctx context.Context, lineID snowflake.ID) (*statementdomain.StatementLine, error) {
	var line statementdomain.StatementLine
	err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateLine(ctx context.Context, line *statementdomain.StatementLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) UpdateLines(ctx context.Context, lines []statementdomain.StatementLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			if err := tx.Save(&lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) RefreshCounters(ctx context.Context, importID snowflake.ID, status statementdomain.ImportStatus) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE statement_imports SET
			matched_rows = (SELECT COUNT(*) FROM statement_lines WHERE import_id = statement_imports.id AND is_matched),
			unmatched_rows = (SELECT COUNT(*) FROM statement_lines WHERE import_id = statement_imports.id AND NOT is_matched),
			status = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status,
		importID,
	).Error
}
