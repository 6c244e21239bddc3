package vouchers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/internal/store/storetest"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeNotifications struct {
	enqueued []notifications.EnqueueParams
}

func (f *fakeNotifications) Enqueue(ctx context.Context, params notifications.EnqueueParams) (*models.Notification, error) {
	f.enqueued = append(f.enqueued, params)
	return &models.Notification{ID: uuid.New()}, nil
}

func (f *fakeNotifications) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotifications) ExistsForPot(ctx context.Context, potID uuid.UUID, kind enums.NotificationType) (bool, error) {
	return false, nil
}

func (f *fakeNotifications) ExistsForDonation(ctx context.Context, donationID uuid.UUID, kind enums.NotificationType) (bool, error) {
	return false, nil
}

type harness struct {
	vouchers    []models.Voucher
	invitations []models.Invitation
	pot         models.Pot
	notifier    *fakeNotifications
	svc         Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		notifier: &fakeNotifications{},
		pot: models.Pot{
			ID:            uuid.New(),
			UserID:        uuid.New(),
			TargetAmount:  50000,
			CurrentAmount: 50000,
			Status:        enums.PotStatusClosed,
		},
	}

	vouchersColl := &storetest.Fake[models.Voucher]{
		CreateFn: func(ctx context.Context, record *models.Voucher) error {
			h.vouchers = append(h.vouchers, *record)
			return nil
		},
		UpdateFn: func(ctx context.Context, record *models.Voucher) error {
			for i := range h.vouchers {
				if h.vouchers[i].ID == record.ID {
					h.vouchers[i] = *record
					return nil
				}
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		},
		FindManyFn: func(ctx context.Context, filters store.Filters, opts store.QueryOptions) ([]models.Voucher, error) {
			var out []models.Voucher
			for _, voucher := range h.vouchers {
				if v, ok := filters["invitation_id"]; ok {
					if voucher.InvitationID == nil || *voucher.InvitationID != v.(uuid.UUID) {
						continue
					}
				}
				if v, ok := filters["code"]; ok && voucher.Code != v.(string) {
					continue
				}
				if v, ok := filters["pot_id"]; ok && voucher.PotID != v.(uuid.UUID) {
					continue
				}
				out = append(out, voucher)
			}
			if opts.Limit > 0 && len(out) > opts.Limit {
				out = out[:opts.Limit]
			}
			return out, nil
		},
	}

	invitationsColl := &storetest.Fake[models.Invitation]{
		FindManyFn: func(ctx context.Context, filters store.Filters, opts store.QueryOptions) ([]models.Invitation, error) {
			var out []models.Invitation
			for _, invitation := range h.invitations {
				if v, ok := filters["status"]; ok && invitation.Status != v.(enums.InvitationStatus) {
					continue
				}
				if v, ok := filters["pot_id"]; ok && invitation.PotID != v.(uuid.UUID) {
					continue
				}
				out = append(out, invitation)
			}
			return out, nil
		},
	}

	potsColl := &storetest.Fake[models.Pot]{
		FindByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Pot, error) {
			if id != h.pot.ID {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
			}
			pot := h.pot
			return &pot, nil
		},
	}

	svc, err := NewService(Params{
		Vouchers:      vouchersColl,
		Invitations:   invitationsColl,
		Pots:          potsColl,
		Notifications: h.notifier,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:           func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) addGuest(status enums.InvitationStatus) models.Invitation {
	invitation := models.Invitation{
		ID:           uuid.New(),
		PotID:        h.pot.ID,
		GuestName:    "Guest",
		GuestContact: "+221770000000",
		Channel:      enums.NotificationChannelWhatsApp,
		Status:       status,
	}
	h.invitations = append(h.invitations, invitation)
	return invitation
}

func TestIssueForPotIssuesPerConfirmedGuest(t *testing.T) {
	h := newHarness(t)
	h.addGuest(enums.InvitationStatusConfirmed)
	h.addGuest(enums.InvitationStatusConfirmed)
	h.addGuest(enums.InvitationStatusInvited)
	h.addGuest(enums.InvitationStatusDeclined)

	issued, err := h.svc.IssueForPot(context.Background(), h.pot.ID)
	if err != nil {
		t.Fatalf("IssueForPot: %v", err)
	}
	if issued != 2 {
		t.Fatalf("issued = %d, want 2", issued)
	}
	if len(h.vouchers) != 2 {
		t.Fatalf("vouchers = %d", len(h.vouchers))
	}
	for _, voucher := range h.vouchers {
		if voucher.Status != enums.VoucherStatusIssued {
			t.Fatalf("status = %s", voucher.Status)
		}
		raw, err := base64.StdEncoding.DecodeString(voucher.QRData)
		if err != nil {
			t.Fatalf("qr data not base64: %v", err)
		}
		var payload qrPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("qr data not json: %v", err)
		}
		if payload.Code != voucher.Code || payload.PotID != h.pot.ID {
			t.Fatalf("payload = %+v", payload)
		}
	}
	if len(h.notifier.enqueued) != 2 {
		t.Fatalf("notifications = %d", len(h.notifier.enqueued))
	}
}

func TestIssueForPotIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.addGuest(enums.InvitationStatusConfirmed)

	if _, err := h.svc.IssueForPot(context.Background(), h.pot.ID); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	issued, err := h.svc.IssueForPot(context.Background(), h.pot.ID)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if issued != 0 {
		t.Fatalf("re-run issued %d new vouchers", issued)
	}
	if len(h.vouchers) != 1 {
		t.Fatalf("vouchers = %d", len(h.vouchers))
	}
}

func TestIssueForPotFillsGaps(t *testing.T) {
	h := newHarness(t)
	first := h.addGuest(enums.InvitationStatusConfirmed)
	h.addGuest(enums.InvitationStatusConfirmed)

	// Simulate an earlier partial run that only covered the first guest.
	firstID := first.ID
	h.vouchers = append(h.vouchers, models.Voucher{
		ID: uuid.New(), PotID: h.pot.ID, InvitationID: &firstID,
		Code: uuid.New().String(), QRData: "x", Status: enums.VoucherStatusIssued,
	})

	issued, err := h.svc.IssueForPot(context.Background(), h.pot.ID)
	if err != nil {
		t.Fatalf("IssueForPot: %v", err)
	}
	if issued != 1 {
		t.Fatalf("issued = %d, want 1", issued)
	}
	if len(h.vouchers) != 2 {
		t.Fatalf("vouchers = %d", len(h.vouchers))
	}
}

func TestRedeemExactlyOnce(t *testing.T) {
	h := newHarness(t)
	h.addGuest(enums.InvitationStatusConfirmed)
	if _, err := h.svc.IssueForPot(context.Background(), h.pot.ID); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := h.vouchers[0].Code

	voucher, err := h.svc.Redeem(context.Background(), code)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if voucher.Status != enums.VoucherStatusRedeemed || voucher.RedeemedAt == nil {
		t.Fatalf("voucher = %+v", voucher)
	}

	if _, err := h.svc.Redeem(context.Background(), code); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on reuse, got %v", err)
	}

	if _, err := h.svc.Redeem(context.Background(), "bogus"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
