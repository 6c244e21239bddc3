package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// Sponsorship is a directed referral: a sponsor invites someone whose birthday
// pot will later earn the sponsor reward points. It transitions to accepted or
// rejected exactly once; after acceptance the scheduler attaches the pot id.
type Sponsorship struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SponsorUserID   uuid.UUID               `gorm:"column:sponsor_user_id;type:uuid;not null;index"`
	InvitedUserID   *uuid.UUID              `gorm:"column:invited_user_id;type:uuid"`
	InvitedName     string                  `gorm:"column:invited_name;type:text;not null"`
	InvitedPhone    string                  `gorm:"column:invited_phone;type:text;not null"`
	InvitedBirthday time.Time               `gorm:"column:invited_birthday;type:date;not null"`
	Status          enums.SponsorshipStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PotID           *uuid.UUID              `gorm:"column:pot_id;type:uuid"`
	RespondedAt     *time.Time              `gorm:"column:responded_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
