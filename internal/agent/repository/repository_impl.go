package repository

import (
	"context"
	"strings"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) agentdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*agentdomain.Agent, error) {
	var agent agentdomain.Agent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]agentdomain.Agent, error) {
	out := make(map[snowflake.ID]agentdomain.Agent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var agents []agentdomain.Agent
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&agents).Error; err != nil {
		return nil, err
	}
	for _, a := range agents {
		out[a.ID] = a
	}
	return out, nil
}

func (r *repository) FindByProducerCode(ctx context.Context, code string) (*agentdomain.Agent, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var agent agentdomain.Agent
	err := r.db.WithContext(ctx).
		Where("producer_code = ?", code).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) List(ctx context.Context) ([]agentdomain.Agent, error) {
	var agents []agentdomain.Agent
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}
