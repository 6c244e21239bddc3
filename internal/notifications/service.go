// Package notifications records outbound messages for later delivery. This
// service only enqueues; actual sending over email, SMS, or WhatsApp happens
// in a separate delivery worker outside this codebase.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// Service defines notification enqueue and read operations.
type Service interface {
	Enqueue(ctx context.Context, params EnqueueParams) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	ExistsForPot(ctx context.Context, potID uuid.UUID, kind enums.NotificationType) (bool, error)
	ExistsForDonation(ctx context.Context, donationID uuid.UUID, kind enums.NotificationType) (bool, error)
}

// Params wires notification dependencies.
type Params struct {
	Notifications store.Collection[models.Notification]
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	notifications store.Collection[models.Notification]
	logger        *logger.Logger
	now           func() time.Time
}

// NewService validates dependencies and returns the notifications service.
func NewService(params Params) (Service, error) {
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications collection required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		notifications: params.Notifications,
		logger:        params.Logger,
		now:           now,
	}, nil
}

// EnqueueParams describes one message to queue.
type EnqueueParams struct {
	UserID     uuid.UUID
	PotID      *uuid.UUID
	DonationID *uuid.UUID
	Type       enums.NotificationType
	Channel    enums.NotificationChannel
	Recipient  string
	Title      string
	Message    string
}

func (s *service) Enqueue(ctx context.Context, params EnqueueParams) (*models.Notification, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification user id required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	if !params.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification channel")
	}
	if params.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}

	notification := &models.Notification{
		ID:         uuid.New(),
		UserID:     params.UserID,
		PotID:      params.PotID,
		DonationID: params.DonationID,
		Type:       params.Type,
		Title:      params.Title,
		Message:    params.Message,
		Channel:    params.Channel,
		Recipient:  params.Recipient,
		Status:     enums.NotificationStatusPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue notification")
	}

	s.logger.Info(ctx, "notification queued: "+string(params.Type))
	return notification, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.notifications.FindMany(ctx, store.Filters{"user_id": userID}, store.QueryOptions{
		Limit:   limit,
		OrderBy: "created_at DESC",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

// ExistsForPot reports whether a notification of the given type was already
// queued for a pot. The scheduler relies on this check to keep reminder and
// lifecycle sends idempotent across overlapping runs.
func (s *service) ExistsForPot(ctx context.Context, potID uuid.UUID, kind enums.NotificationType) (bool, error) {
	if potID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "pot id required")
	}
	rows, err := s.notifications.FindMany(ctx, store.Filters{
		"pot_id": potID,
		"type":   kind,
	}, store.QueryOptions{Limit: 1})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check notification existence")
	}
	return len(rows) > 0, nil
}

// ExistsForDonation is the per-donation variant of ExistsForPot. Webhook
// redelivery uses it to send the donation-received message exactly once even
// when the first completion attempt failed partway.
func (s *service) ExistsForDonation(ctx context.Context, donationID uuid.UUID, kind enums.NotificationType) (bool, error) {
	if donationID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	rows, err := s.notifications.FindMany(ctx, store.Filters{
		"donation_id": donationID,
		"type":        kind,
	}, store.QueryOptions{Limit: 1})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check notification existence")
	}
	return len(rows) > 0, nil
}
