package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/pkg/enums"
)

// UserPoints is the per-user stored snapshot of the ledger: lazily created on
// the first award and updated after every entry. LifetimePoints never
// decreases; CurrentLevel is derived from it. PendingCreditCFA carries the
// unapplied remainder of a pot credit to the next application.
type UserPoints struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	TotalPoints      int               `gorm:"column:total_points;not null;default:0"`
	AvailablePoints  int               `gorm:"column:available_points;not null;default:0"`
	LifetimePoints   int               `gorm:"column:lifetime_points;not null;default:0"`
	CurrentLevel     enums.PointsLevel `gorm:"column:current_level;type:text;not null;default:'bronze'"`
	PendingCreditCFA int64             `gorm:"column:pending_credit_cfa;not null;default:0"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
