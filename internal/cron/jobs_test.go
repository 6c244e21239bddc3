package cron

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

func testJobLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

// fakeJobRewards records awards; HasEntry answers from the recorded set plus
// any pre-seeded sources.
type fakeJobRewards struct {
	awards  []rewards.AwardParams
	seeded  map[string]bool
	failOn  enums.PointSourceType
	failErr error
}

func (f *fakeJobRewards) key(sourceType enums.PointSourceType, sourceID uuid.UUID) string {
	return string(sourceType) + "/" + sourceID.String()
}

func (f *fakeJobRewards) AwardPoints(_ context.Context, params rewards.AwardParams) (*models.PointTransaction, error) {
	if f.failOn != "" && params.SourceType == f.failOn {
		return nil, f.failErr
	}
	f.awards = append(f.awards, params)
	return &models.PointTransaction{ID: uuid.New()}, nil
}

func (f *fakeJobRewards) HasEntry(_ context.Context, sourceType enums.PointSourceType, sourceID uuid.UUID) (bool, error) {
	if f.seeded[f.key(sourceType, sourceID)] {
		return true, nil
	}
	for _, a := range f.awards {
		if a.SourceType == sourceType && a.SourceID != nil && *a.SourceID == sourceID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeJobRewards) CalculatePotGrowthBonus(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeJobRewards) ConvertPointsToCFA(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (f *fakeJobRewards) ApplyCreditToPot(context.Context, uuid.UUID, int) (*rewards.CreditResult, error) {
	return nil, nil
}

func (f *fakeJobRewards) CalculateLevel(int) enums.PointsLevel {
	return enums.PointsLevelBronze
}

func (f *fakeJobRewards) GetUserPointsStatus(context.Context, uuid.UUID) (*rewards.PointsStatus, error) {
	return nil, nil
}

// fakeJobNotifications records enqueued notifications and answers ExistsForPot
// from what it has already seen.
type fakeJobNotifications struct {
	queued     []notifications.EnqueueParams
	enqueueErr error
}

func (f *fakeJobNotifications) Enqueue(_ context.Context, params notifications.EnqueueParams) (*models.Notification, error) {
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}
	f.queued = append(f.queued, params)
	return &models.Notification{ID: uuid.New()}, nil
}

func (f *fakeJobNotifications) List(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeJobNotifications) ExistsForPot(_ context.Context, potID uuid.UUID, kind enums.NotificationType) (bool, error) {
	for _, q := range f.queued {
		if q.PotID != nil && *q.PotID == potID && q.Type == kind {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeJobNotifications) ExistsForDonation(_ context.Context, donationID uuid.UUID, kind enums.NotificationType) (bool, error) {
	for _, q := range f.queued {
		if q.DonationID != nil && *q.DonationID == donationID && q.Type == kind {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeJobNotifications) ofType(kind enums.NotificationType) []notifications.EnqueueParams {
	var out []notifications.EnqueueParams
	for _, q := range f.queued {
		if q.Type == kind {
			out = append(out, q)
		}
	}
	return out
}

type fakeVoucherIssuer struct {
	issued   []uuid.UUID
	issueErr error
}

func (f *fakeVoucherIssuer) IssueForPot(_ context.Context, potID uuid.UUID) (int, error) {
	if f.issueErr != nil {
		return 0, f.issueErr
	}
	f.issued = append(f.issued, potID)
	return 1, nil
}

func (f *fakeVoucherIssuer) Redeem(context.Context, string) (*models.Voucher, error) {
	return nil, nil
}

func (f *fakeVoucherIssuer) ListForPot(context.Context, uuid.UUID) ([]models.Voucher, error) {
	return nil, nil
}

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
