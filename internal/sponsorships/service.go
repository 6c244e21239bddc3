// Package sponsorships manages the referral flow: a sponsor invites someone,
// the invitee answers exactly once, and the scheduler later opens a pot for
// accepted sponsorships.
package sponsorships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/dates"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// Service defines sponsorship operations.
type Service interface {
	Invite(ctx context.Context, params InviteParams) (*models.Sponsorship, error)
	Respond(ctx context.Context, sponsorshipID uuid.UUID, accept bool) (*models.Sponsorship, error)
	ListBySponsor(ctx context.Context, sponsorUserID uuid.UUID) ([]models.Sponsorship, error)
}

// Params wires sponsorship dependencies.
type Params struct {
	Sponsorships  store.Collection[models.Sponsorship]
	Notifications notifications.Service
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	sponsorships  store.Collection[models.Sponsorship]
	notifications notifications.Service
	logger        *logger.Logger
	now           func() time.Time
}

// NewService validates dependencies and returns the sponsorships service.
func NewService(params Params) (Service, error) {
	if params.Sponsorships == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sponsorships collection required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sponsorships notifications service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sponsorships logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		sponsorships:  params.Sponsorships,
		notifications: params.Notifications,
		logger:        params.Logger,
		now:           now,
	}, nil
}

// InviteParams describes a new referral. InvitedUserID is set when the
// invitee already has an account.
type InviteParams struct {
	SponsorUserID   uuid.UUID
	InvitedUserID   *uuid.UUID
	InvitedName     string
	InvitedPhone    string
	InvitedBirthday time.Time
}

func (s *service) Invite(ctx context.Context, params InviteParams) (*models.Sponsorship, error) {
	if params.SponsorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sponsor user id required")
	}
	if params.InvitedName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invited name required")
	}
	if params.InvitedPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invited phone required")
	}
	if params.InvitedBirthday.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invited birthday required")
	}

	sponsorship := &models.Sponsorship{
		ID:              uuid.New(),
		SponsorUserID:   params.SponsorUserID,
		InvitedUserID:   params.InvitedUserID,
		InvitedName:     params.InvitedName,
		InvitedPhone:    params.InvitedPhone,
		InvitedBirthday: dates.MidnightUTC(params.InvitedBirthday),
		Status:          enums.SponsorshipStatusPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.sponsorships.Create(ctx, sponsorship); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sponsorship")
	}

	// The invite goes over SMS to the invitee's phone. The row belongs to the
	// sponsor when the invitee has no account yet.
	recipientUser := params.SponsorUserID
	if params.InvitedUserID != nil {
		recipientUser = *params.InvitedUserID
	}
	if _, err := s.notifications.Enqueue(ctx, notifications.EnqueueParams{
		UserID:    recipientUser,
		Type:      enums.NotificationSponsorshipInvite,
		Channel:   enums.NotificationChannelSMS,
		Recipient: params.InvitedPhone,
		Title:     "Birthday pot invitation",
		Message:   fmt.Sprintf("%s, you have been invited to open a birthday pot on Kadoo", params.InvitedName),
	}); err != nil {
		s.logger.Error(ctx, "queue sponsorship invite notification", err)
	}

	s.logger.Info(s.logger.WithUserID(ctx, params.SponsorUserID.String()), "sponsorship invitation created")
	return sponsorship, nil
}

// Respond records the invitee's answer. A sponsorship answers exactly once;
// any second response is a state conflict.
func (s *service) Respond(ctx context.Context, sponsorshipID uuid.UUID, accept bool) (*models.Sponsorship, error) {
	if sponsorshipID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sponsorship id required")
	}
	sponsorship, err := s.sponsorships.FindByID(ctx, sponsorshipID)
	if err != nil {
		return nil, err
	}
	if sponsorship.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sponsorship already answered")
	}

	now := s.now().UTC()
	if accept {
		sponsorship.Status = enums.SponsorshipStatusAccepted
	} else {
		sponsorship.Status = enums.SponsorshipStatusRejected
	}
	sponsorship.RespondedAt = &now
	if err := s.sponsorships.Update(ctx, sponsorship); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sponsorship response")
	}

	s.logger.Info(ctx, "sponsorship "+string(sponsorship.Status))
	return sponsorship, nil
}

func (s *service) ListBySponsor(ctx context.Context, sponsorUserID uuid.UUID) ([]models.Sponsorship, error) {
	if sponsorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sponsor user id required")
	}
	rows, err := s.sponsorships.FindMany(ctx, store.Filters{"sponsor_user_id": sponsorUserID}, store.QueryOptions{
		OrderBy: "created_at DESC",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sponsorships")
	}
	return rows, nil
}
