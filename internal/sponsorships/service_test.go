package sponsorships

import (
	"context"
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
	rows     []models.Sponsorship
	notifier *fakeNotifications
	svc      Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{notifier: &fakeNotifications{}}

	coll := &storetest.Fake[models.Sponsorship]{
		CreateFn: func(ctx context.Context, record *models.Sponsorship) error {
			h.rows = append(h.rows, *record)
			return nil
		},
		UpdateFn: func(ctx context.Context, record *models.Sponsorship) error {
			for i := range h.rows {
				if h.rows[i].ID == record.ID {
					h.rows[i] = *record
					return nil
				}
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		},
		FindByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Sponsorship, error) {
			for i := range h.rows {
				if h.rows[i].ID == id {
					row := h.rows[i]
					return &row, nil
				}
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		},
		FindManyFn: func(ctx context.Context, filters store.Filters, opts store.QueryOptions) ([]models.Sponsorship, error) {
			var out []models.Sponsorship
			for _, row := range h.rows {
				if v, ok := filters["sponsor_user_id"]; ok && row.SponsorUserID != v.(uuid.UUID) {
					continue
				}
				out = append(out, row)
			}
			return out, nil
		},
	}

	svc, err := NewService(Params{
		Sponsorships:  coll,
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

func TestInviteCreatesPendingSponsorship(t *testing.T) {
	h := newHarness(t)
	sponsorID := uuid.New()

	sp, err := h.svc.Invite(context.Background(), InviteParams{
		SponsorUserID:   sponsorID,
		InvitedName:     "Moussa",
		InvitedPhone:    "+221770000000",
		InvitedBirthday: time.Date(1995, 6, 15, 10, 30, 0, 0, time.FixedZone("WAT", 3600)),
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if sp.Status != enums.SponsorshipStatusPending {
		t.Fatalf("status = %s", sp.Status)
	}
	if sp.PotID != nil {
		t.Fatal("pot must not be attached yet")
	}
	want := time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC)
	if !sp.InvitedBirthday.Equal(want) {
		t.Fatalf("birthday not normalized: %v", sp.InvitedBirthday)
	}
	if len(h.notifier.enqueued) != 1 {
		t.Fatalf("expected invite notification, got %d", len(h.notifier.enqueued))
	}
	if h.notifier.enqueued[0].Type != enums.NotificationSponsorshipInvite {
		t.Fatalf("notification type = %s", h.notifier.enqueued[0].Type)
	}
	if h.notifier.enqueued[0].Recipient != "+221770000000" {
		t.Fatalf("recipient = %s", h.notifier.enqueued[0].Recipient)
	}
}

func TestInviteValidation(t *testing.T) {
	h := newHarness(t)
	cases := []InviteParams{
		{InvitedName: "A", InvitedPhone: "1", InvitedBirthday: testNow},
		{SponsorUserID: uuid.New(), InvitedPhone: "1", InvitedBirthday: testNow},
		{SponsorUserID: uuid.New(), InvitedName: "A", InvitedBirthday: testNow},
		{SponsorUserID: uuid.New(), InvitedName: "A", InvitedPhone: "1"},
	}
	for i, params := range cases {
		if _, err := h.svc.Invite(context.Background(), params); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRespondTransitionsExactlyOnce(t *testing.T) {
	h := newHarness(t)
	sp, err := h.svc.Invite(context.Background(), InviteParams{
		SponsorUserID:   uuid.New(),
		InvitedName:     "Moussa",
		InvitedPhone:    "+221770000000",
		InvitedBirthday: testNow,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	answered, err := h.svc.Respond(context.Background(), sp.ID, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if answered.Status != enums.SponsorshipStatusAccepted {
		t.Fatalf("status = %s", answered.Status)
	}
	if answered.RespondedAt == nil {
		t.Fatal("expected responded_at")
	}

	if _, err := h.svc.Respond(context.Background(), sp.ID, false); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on second answer, got %v", err)
	}
	if h.rows[0].Status != enums.SponsorshipStatusAccepted {
		t.Fatalf("second answer mutated state to %s", h.rows[0].Status)
	}
}

func TestRespondReject(t *testing.T) {
	h := newHarness(t)
	sp, err := h.svc.Invite(context.Background(), InviteParams{
		SponsorUserID:   uuid.New(),
		InvitedName:     "Awa",
		InvitedPhone:    "+221780000000",
		InvitedBirthday: testNow,
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	answered, err := h.svc.Respond(context.Background(), sp.ID, false)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if answered.Status != enums.SponsorshipStatusRejected {
		t.Fatalf("status = %s", answered.Status)
	}
}

func TestListBySponsor(t *testing.T) {
	h := newHarness(t)
	sponsorID := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := h.svc.Invite(context.Background(), InviteParams{
			SponsorUserID:   sponsorID,
			InvitedName:     "Guest",
			InvitedPhone:    "+221770000000",
			InvitedBirthday: testNow,
		}); err != nil {
			t.Fatalf("Invite %d: %v", i, err)
		}
	}
	if _, err := h.svc.Invite(context.Background(), InviteParams{
		SponsorUserID:   uuid.New(),
		InvitedName:     "Other",
		InvitedPhone:    "+221780000000",
		InvitedBirthday: testNow,
	}); err != nil {
		t.Fatalf("Invite other: %v", err)
	}

	rows, err := h.svc.ListBySponsor(context.Background(), sponsorID)
	if err != nil {
		t.Fatalf("ListBySponsor: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 sponsorships, got %d", len(rows))
	}
}
