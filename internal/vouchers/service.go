// Package vouchers issues QR entry passes to a pot's confirmed guests once
// the pot closes fully funded, and marks them redeemed at the door.
package vouchers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// Service defines voucher operations.
type Service interface {
	// IssueForPot creates one voucher per confirmed guest. Guests who already
	// hold a voucher are skipped, so re-running after a partial failure only
	// fills the gaps. Returns the number of vouchers issued by this call.
	IssueForPot(ctx context.Context, potID uuid.UUID) (int, error)
	Redeem(ctx context.Context, code string) (*models.Voucher, error)
	ListForPot(ctx context.Context, potID uuid.UUID) ([]models.Voucher, error)
}

// Params wires voucher dependencies.
type Params struct {
	Vouchers      store.Collection[models.Voucher]
	Invitations   store.Collection[models.Invitation]
	Pots          store.Collection[models.Pot]
	Notifications notifications.Service
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	vouchers      store.Collection[models.Voucher]
	invitations   store.Collection[models.Invitation]
	pots          store.Collection[models.Pot]
	notifications notifications.Service
	logger        *logger.Logger
	now           func() time.Time
}

// NewService validates dependencies and returns the vouchers service.
func NewService(params Params) (Service, error) {
	if params.Vouchers == nil || params.Invitations == nil || params.Pots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vouchers collections required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vouchers notifications service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vouchers logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		vouchers:      params.Vouchers,
		invitations:   params.Invitations,
		pots:          params.Pots,
		notifications: params.Notifications,
		logger:        params.Logger,
		now:           now,
	}, nil
}

type qrPayload struct {
	Code      string    `json:"code"`
	PotID     uuid.UUID `json:"pot_id"`
	GuestName string    `json:"guest_name"`
	IssuedAt  time.Time `json:"issued_at"`
}

func (s *service) IssueForPot(ctx context.Context, potID uuid.UUID) (int, error) {
	if potID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "pot id required")
	}
	pot, err := s.pots.FindByID(ctx, potID)
	if err != nil {
		return 0, err
	}

	confirmed, err := s.invitations.FindMany(ctx, store.Filters{
		"pot_id": potID,
		"status": enums.InvitationStatusConfirmed,
	}, store.QueryOptions{OrderBy: "created_at ASC"})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load confirmed guests")
	}

	issued := 0
	for i := range confirmed {
		invitation := confirmed[i]
		existing, err := s.vouchers.FindMany(ctx, store.Filters{"invitation_id": invitation.ID}, store.QueryOptions{Limit: 1})
		if err != nil {
			return issued, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing voucher")
		}
		if len(existing) > 0 {
			continue
		}

		code := uuid.New().String()
		payload, err := json.Marshal(qrPayload{
			Code:      code,
			PotID:     potID,
			GuestName: invitation.GuestName,
			IssuedAt:  s.now().UTC(),
		})
		if err != nil {
			return issued, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr payload")
		}

		invitationID := invitation.ID
		voucher := &models.Voucher{
			ID:           uuid.New(),
			PotID:        potID,
			InvitationID: &invitationID,
			Code:         code,
			QRData:       base64.StdEncoding.EncodeToString(payload),
			Status:       enums.VoucherStatusIssued,
			IssuedAt:     s.now().UTC(),
		}
		if err := s.vouchers.Create(ctx, voucher); err != nil {
			return issued, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
		}
		issued++

		if _, err := s.notifications.Enqueue(ctx, notifications.EnqueueParams{
			UserID:    pot.UserID,
			PotID:     &potID,
			Type:      enums.NotificationVoucherIssued,
			Channel:   invitation.Channel,
			Recipient: invitation.GuestContact,
			Title:     "Your birthday voucher",
			Message:   fmt.Sprintf("Voucher issued for %s", invitation.GuestName),
		}); err != nil {
			s.logger.Error(ctx, "queue voucher notification", err)
		}
	}

	if issued > 0 {
		s.logger.Info(s.logger.WithPotID(ctx, potID.String()), fmt.Sprintf("issued %d vouchers", issued))
	}
	return issued, nil
}

// Redeem marks an issued voucher redeemed exactly once.
func (s *service) Redeem(ctx context.Context, code string) (*models.Voucher, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher code required")
	}
	rows, err := s.vouchers.FindMany(ctx, store.Filters{"code": code}, store.QueryOptions{Limit: 1})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up voucher")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown voucher code")
	}
	voucher := rows[0]
	if voucher.Status != enums.VoucherStatusIssued {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "voucher already "+string(voucher.Status))
	}

	now := s.now().UTC()
	voucher.Status = enums.VoucherStatusRedeemed
	voucher.RedeemedAt = &now
	if err := s.vouchers.Update(ctx, &voucher); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem voucher")
	}
	return &voucher, nil
}

func (s *service) ListForPot(ctx context.Context, potID uuid.UUID) ([]models.Voucher, error) {
	if potID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pot id required")
	}
	rows, err := s.vouchers.FindMany(ctx, store.Filters{"pot_id": potID}, store.QueryOptions{OrderBy: "issued_at ASC"})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	return rows, nil
}
