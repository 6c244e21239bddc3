package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal account record the pot/rewards core needs. Profile,
// credentials, and identity documents live in the external platform.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName  string     `gorm:"column:full_name;type:text;not null"`
	Email     *string    `gorm:"column:email;type:text"`
	Phone     string     `gorm:"column:phone;type:text;not null"`
	Birthday  *time.Time `gorm:"column:birthday;type:date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
