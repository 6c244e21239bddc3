package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/internal/vouchers"
	"github.com/terangalabs/kadoo-backend/pkg/dates"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// ClosingJobParams configure the pot closing pass.
type ClosingJobParams struct {
	Logger        *logger.Logger
	Pots          store.Collection[models.Pot]
	Notifications notifications.Service
	Vouchers      vouchers.Service
	Now           func() time.Time
}

// NewClosingJob builds the pass that closes active pots once the birthday has
// fully elapsed. Closing flips the status first, so a crash mid-pass leaves
// the pot closed and the next run retries only the voucher and notification
// side of it through their own idempotency checks.
func NewClosingJob(params ClosingJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pots == nil {
		return nil, fmt.Errorf("pot collection required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if params.Vouchers == nil {
		return nil, fmt.Errorf("vouchers service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &closingJob{
		logg:          params.Logger,
		pots:          params.Pots,
		notifications: params.Notifications,
		vouchers:      params.Vouchers,
		now:           now,
	}, nil
}

type closingJob struct {
	logg          *logger.Logger
	pots          store.Collection[models.Pot]
	notifications notifications.Service
	vouchers      vouchers.Service
	now           func() time.Time
}

func (j *closingJob) Name() string { return "pot-closing" }

func (j *closingJob) Run(ctx context.Context) error {
	// A pot stays open through the whole birthday; it is only eligible once
	// the birthday date is strictly in the past.
	today := dates.MidnightUTC(j.now())
	elapsed, err := j.pots.FindMany(ctx, store.Filters{
		"status":          enums.PotStatusActive,
		"birthday_date <": today,
	}, store.QueryOptions{OrderBy: "birthday_date ASC"})
	if err != nil {
		return fmt.Errorf("query elapsed pots: %w", err)
	}

	closed := 0
	var errs error
	for i := range elapsed {
		if err := j.closePot(ctx, &elapsed[i]); err != nil {
			j.logg.Error(ctx, "close pot "+elapsed[i].ID.String(), err)
			errs = multierr.Append(errs, err)
			continue
		}
		closed++
	}

	j.logg.Info(j.logg.WithField(ctx, "count", closed), "pot closing pass complete")
	return errs
}

func (j *closingJob) closePot(ctx context.Context, pot *models.Pot) error {
	closedAt := j.now().UTC()
	pot.Status = enums.PotStatusClosed
	pot.ClosedAt = &closedAt
	if err := j.pots.Update(ctx, pot); err != nil {
		return fmt.Errorf("close pot: %w", err)
	}

	var errs error
	exists, err := j.notifications.ExistsForPot(ctx, pot.ID, enums.NotificationPotClosed)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if !exists {
		potID := pot.ID
		if _, err := j.notifications.Enqueue(ctx, notifications.EnqueueParams{
			UserID:    pot.UserID,
			PotID:     &potID,
			Type:      enums.NotificationPotClosed,
			Channel:   enums.NotificationChannelInApp,
			Recipient: pot.UserID.String(),
			Title:     "Your pot is closed",
			Message:   fmt.Sprintf("Your birthday pot closed at %d FCFA", pot.CurrentAmount),
		}); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if pot.TargetAmount > 0 && pot.CurrentAmount >= pot.TargetAmount {
		if _, err := j.vouchers.IssueForPot(ctx, pot.ID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
