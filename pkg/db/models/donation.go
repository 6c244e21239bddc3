package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// Donation is a single payment attempt against a pot. ExternalTransactionID
// is the reference sent to the payment provider and the idempotency key for
// webhook processing.
type Donation struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PotID                 uuid.UUID            `gorm:"column:pot_id;type:uuid;not null;index"`
	DonorName             string               `gorm:"column:donor_name;type:text"`
	Amount                int64                `gorm:"column:amount;not null"`
	Currency              string               `gorm:"column:currency;type:text;not null;default:'XOF'"`
	Status                enums.DonationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ExternalTransactionID string               `gorm:"column:external_transaction_id;type:text;not null;uniqueIndex"`
	PaymentMethod         *string              `gorm:"column:payment_method;type:text"`
	FailureReason         *string              `gorm:"column:failure_reason;type:text"`
	ProcessedAt           *time.Time           `gorm:"column:processed_at"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
