package models

import (
	"time"

	"github.com/google/uuid"
)

// CreditLedger holds a user's current credit balance. One row per user,
// locked FOR UPDATE by every debit and reset.
type CreditLedger struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id" validate:"required"`
	Balance     int       `gorm:"not null" json:"balance" validate:"gte=0"`
	LastResetAt time.Time `gorm:"not null" json:"last_reset_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreditUsage accumulates the amount charged to a user on one calendar day.
type CreditUsage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credit_usage_user_day" json:"user_id" validate:"required"`
	Day       time.Time `gorm:"type:date;not null;uniqueIndex:idx_credit_usage_user_day" json:"day"`
	Amount    int       `gorm:"not null" json:"amount" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
