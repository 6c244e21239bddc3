package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// Notification is an outbound message queued for the external delivery
// system. This core only creates pending rows.
type Notification struct {
	ID         uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID                 `gorm:"column:user_id;type:uuid;not null;index"`
	PotID      *uuid.UUID                `gorm:"column:pot_id;type:uuid;index"`
	DonationID *uuid.UUID                `gorm:"column:donation_id;type:uuid;index"`
	Type       enums.NotificationType    `gorm:"column:type;type:text;not null"`
	Title      string                    `gorm:"column:title;type:text;not null"`
	Message    string                    `gorm:"column:message;type:text;not null"`
	Channel    enums.NotificationChannel `gorm:"column:channel;type:text;not null"`
	Recipient  string                    `gorm:"column:recipient;type:text;not null"`
	Status     enums.NotificationStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	SentAt     *time.Time                `gorm:"column:sent_at"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
