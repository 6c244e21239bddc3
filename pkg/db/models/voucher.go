package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// Voucher is a QR-backed entry pass issued per confirmed guest once a pot
// closes at or above its target.
type Voucher struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PotID        uuid.UUID           `gorm:"column:pot_id;type:uuid;not null;index"`
	InvitationID *uuid.UUID          `gorm:"column:invitation_id;type:uuid;index"`
	Code         string              `gorm:"column:code;type:text;not null;uniqueIndex"`
	QRData       string              `gorm:"column:qr_data;type:text;not null"`
	Status       enums.VoucherStatus `gorm:"column:status;type:text;not null;default:'issued'"`
	IssuedAt     time.Time           `gorm:"column:issued_at;autoCreateTime"`
	RedeemedAt   *time.Time          `gorm:"column:redeemed_at"`
}
