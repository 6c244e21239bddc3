package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// Pot is one birthday fundraising campaign. CurrentAmount is derived state:
// it must always equal the sum of completed donation amounts minus refunds,
// and only the payment processor mutates it.
type Pot struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	SponsorshipID *uuid.UUID      `gorm:"column:sponsorship_id;type:uuid"`
	TargetAmount  int64           `gorm:"column:target_amount;not null"`
	CurrentAmount int64           `gorm:"column:current_amount;not null;default:0"`
	BirthdayDate  time.Time       `gorm:"column:birthday_date;type:date;not null;index"`
	Status        enums.PotStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	IsPublic      bool            `gorm:"column:is_public;not null;default:false"`
	ClosedAt      *time.Time      `gorm:"column:closed_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
