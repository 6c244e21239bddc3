package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/dates"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// ReminderJobParams configure the birthday reminder pass.
type ReminderJobParams struct {
	Logger        *logger.Logger
	Pots          store.Collection[models.Pot]
	Notifications notifications.Service
	Offsets       []int
	Now           func() time.Time
}

// NewReminderJob builds the pass that sends J-7, J-3 and J-1 reminders for
// active pots. Each (pot, offset) pair is sent at most once: the pass checks
// for an existing notification of the same type before queueing.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pots == nil {
		return nil, fmt.Errorf("pot collection required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if len(params.Offsets) == 0 {
		params.Offsets = []int{7, 3, 1}
	}
	for _, offset := range params.Offsets {
		if _, err := enums.ReminderTypeForOffset(offset); err != nil {
			return nil, err
		}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &reminderJob{
		logg:          params.Logger,
		pots:          params.Pots,
		notifications: params.Notifications,
		offsets:       params.Offsets,
		now:           now,
	}, nil
}

type reminderJob struct {
	logg          *logger.Logger
	pots          store.Collection[models.Pot]
	notifications notifications.Service
	offsets       []int
	now           func() time.Time
}

func (j *reminderJob) Name() string { return "birthday-reminders" }

func (j *reminderJob) Run(ctx context.Context) error {
	today := dates.MidnightUTC(j.now())
	sent := 0
	var errs error
	for _, offset := range j.offsets {
		kind, err := enums.ReminderTypeForOffset(offset)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		due, err := j.pots.FindMany(ctx, store.Filters{
			"status":        enums.PotStatusActive,
			"birthday_date": today.AddDate(0, 0, offset),
		}, store.QueryOptions{})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("query pots at J-%d: %w", offset, err))
			continue
		}
		for i := range due {
			n, err := j.remind(ctx, &due[i], offset, kind)
			if err != nil {
				j.logg.Error(ctx, "send reminder for pot "+due[i].ID.String(), err)
				errs = multierr.Append(errs, err)
				continue
			}
			sent += n
		}
	}

	j.logg.Info(j.logg.WithField(ctx, "count", sent), "reminder pass complete")
	return errs
}

func (j *reminderJob) remind(ctx context.Context, pot *models.Pot, offset int, kind enums.NotificationType) (int, error) {
	exists, err := j.notifications.ExistsForPot(ctx, pot.ID, kind)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}
	potID := pot.ID
	_, err = j.notifications.Enqueue(ctx, notifications.EnqueueParams{
		UserID:    pot.UserID,
		PotID:     &potID,
		Type:      kind,
		Channel:   enums.NotificationChannelInApp,
		Recipient: pot.UserID.String(),
		Title:     fmt.Sprintf("%d days to go", offset),
		Message:   fmt.Sprintf("Your birthday pot closes in %d days", offset),
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}
