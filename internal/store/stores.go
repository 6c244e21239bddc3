package store

import (
	"gorm.io/gorm"

	"github.com/terangalabs/kadoo-backend/pkg/db/models"
)

// Stores bundles one collection per entity for wiring into services.
type Stores struct {
	Users             Collection[models.User]
	Sponsorships      Collection[models.Sponsorship]
	Pots              Collection[models.Pot]
	Donations         Collection[models.Donation]
	PointTransactions Collection[models.PointTransaction]
	UserPoints        Collection[models.UserPoints]
	Notifications     Collection[models.Notification]
	Invitations       Collection[models.Invitation]
	Vouchers          Collection[models.Voucher]
}

// New builds the full set of collections over a single database handle.
func New(db *gorm.DB) *Stores {
	return &Stores{
		Users:             NewCollection[models.User](db),
		Sponsorships:      NewCollection[models.Sponsorship](db),
		Pots:              NewCollection[models.Pot](db),
		Donations:         NewCollection[models.Donation](db),
		PointTransactions: NewCollection[models.PointTransaction](db),
		UserPoints:        NewCollection[models.UserPoints](db),
		Notifications:     NewCollection[models.Notification](db),
		Invitations:       NewCollection[models.Invitation](db),
		Vouchers:          NewCollection[models.Voucher](db),
	}
}
