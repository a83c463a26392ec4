package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Canvas stores the full artifact collection of a project as one document.
// Version is bumped on every replace and guards concurrent writers.
type Canvas struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"project_id" validate:"required"`
	Artifacts datatypes.JSON `gorm:"type:jsonb" json:"artifacts"`
	Version   int            `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
