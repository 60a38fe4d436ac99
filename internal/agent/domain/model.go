package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleProducer Role = "producer"
)

// Agent is a producer or staff member of the agency. The directory is
// administered elsewhere; this service only reads it.
type Agent struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Username     string       `gorm:"type:text;not null;uniqueIndex" json:"username"`
	FullName     string       `gorm:"column:full_name;type:text;not null" json:"full_name"`
	Role         Role         `gorm:"type:text;not null;default:'producer'" json:"role"`
	ProducerCode string       `gorm:"column:producer_code;type:text" json:"producer_code"`
	IsActive     bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleProducer:
		return true
	}
	return false
}
