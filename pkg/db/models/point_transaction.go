package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// PointTransaction is an immutable, append-only reward ledger entry. Points is
// signed: positive for earned/bonus, negative for spent/expired. SourceType +
// SourceID (plus Metadata for threshold bonuses) form the dedup key callers
// check before awarding.
type PointTransaction struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Type        enums.PointTransactionType `gorm:"column:type;type:text;not null"`
	Points      int                        `gorm:"column:points;not null"`
	SourceType  enums.PointSourceType      `gorm:"column:source_type;type:text;not null;index:idx_point_tx_source"`
	SourceID    *uuid.UUID                 `gorm:"column:source_id;type:uuid;index:idx_point_tx_source"`
	Metadata    json.RawMessage            `gorm:"column:metadata;type:jsonb"`
	Description string                     `gorm:"column:description;type:text"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
