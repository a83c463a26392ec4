package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerationRun statuses.
const (
	RunStatusPending             = "pending"
	RunStatusStreaming           = "streaming"
	RunStatusCompleted           = "completed"
	RunStatusFailed              = "failed"
	RunStatusInsufficientCredits = "insufficient_credits"
)

// GenerationRun represents one model generation turn for a project.
type GenerationRun struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	UserID         uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Prompt         string         `gorm:"type:text;not null" json:"prompt" validate:"required"`
	Status         string         `gorm:"type:varchar(32);index;not null" json:"status" validate:"required,oneof=pending streaming completed failed insufficient_credits"`
	RawOutput      string         `gorm:"type:text" json:"-"`
	OutputChecksum string         `gorm:"type:varchar(64)" json:"output_checksum,omitempty"`
	Prose          string         `gorm:"type:text" json:"prose"`
	Error          string         `gorm:"type:text" json:"error,omitempty"`
	CreditsCharged int            `gorm:"not null;default:0" json:"credits_charged"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
