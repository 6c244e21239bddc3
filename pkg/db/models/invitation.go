package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// Invitation is one guest on a pot's birthday guest list. Confirmed guests
// receive a voucher when the pot closes fully funded.
type Invitation struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PotID        uuid.UUID                 `gorm:"column:pot_id;type:uuid;not null;index"`
	GuestName    string                    `gorm:"column:guest_name;type:text;not null"`
	GuestContact string                    `gorm:"column:guest_contact;type:text;not null"`
	Channel      enums.NotificationChannel `gorm:"column:channel;type:text;not null;default:'whatsapp'"`
	Status       enums.InvitationStatus    `gorm:"column:status;type:text;not null;default:'invited'"`
	RespondedAt  *time.Time                `gorm:"column:responded_at"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
