// Package pots exposes the read side of birthday pots. All writes to pot
// totals happen in the payments service; lifecycle transitions happen in the
// scheduler jobs.
package pots

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// Service defines pot read operations.
type Service interface {
	Get(ctx context.Context, potID uuid.UUID) (*Summary, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Pot, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Pot, error)
}

// Params wires pot dependencies.
type Params struct {
	Pots      store.Collection[models.Pot]
	Donations store.Collection[models.Donation]
	Logger    *logger.Logger
}

type service struct {
	pots      store.Collection[models.Pot]
	donations store.Collection[models.Donation]
	logger    *logger.Logger
}

// NewService validates dependencies and returns the pots service.
func NewService(params Params) (Service, error) {
	if params.Pots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pots collection required")
	}
	if params.Donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pots donations collection required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pots logger required")
	}
	return &service{pots: params.Pots, donations: params.Donations, logger: params.Logger}, nil
}

// Summary is a pot with its funding progress and contribution count.
type Summary struct {
	Pot             models.Pot `json:"pot"`
	ProgressPercent string     `json:"progress_percent"`
	DonationCount   int        `json:"donation_count"`
}

func (s *service) Get(ctx context.Context, potID uuid.UUID) (*Summary, error) {
	if potID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pot id required")
	}
	pot, err := s.pots.FindByID(ctx, potID)
	if err != nil {
		return nil, err
	}

	completed, err := s.donations.FindMany(ctx, store.Filters{
		"pot_id": potID,
		"status": enums.DonationStatusCompleted,
	}, store.QueryOptions{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pot donations")
	}

	return &Summary{
		Pot:             *pot,
		ProgressPercent: progress(pot.CurrentAmount, pot.TargetAmount),
		DonationCount:   len(completed),
	}, nil
}

// progress renders current/target as a percentage with two decimals.
func progress(current, target int64) string {
	if target <= 0 {
		return "0.00"
	}
	return decimal.NewFromInt(current).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(target)).
		StringFixed(2)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Pot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.pots.FindMany(ctx, store.Filters{"user_id": userID}, store.QueryOptions{
		OrderBy: "birthday_date ASC",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user pots")
	}
	return rows, nil
}

func (s *service) ListPublic(ctx context.Context, limit, offset int) ([]models.Pot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pots.FindMany(ctx, store.Filters{
		"is_public": true,
		"status":    enums.PotStatusActive,
	}, store.QueryOptions{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "birthday_date ASC",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public pots")
	}
	return rows, nil
}
