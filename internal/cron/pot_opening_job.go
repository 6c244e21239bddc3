package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/dates"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// PotOpeningJobParams configure the pot opening pass.
type PotOpeningJobParams struct {
	Logger           *logger.Logger
	Sponsorships     store.Collection[models.Sponsorship]
	Pots             store.Collection[models.Pot]
	Rewards          rewards.Service
	Notifications    notifications.Service
	OpenOffsetDays   int
	AdultAge         int
	DefaultPotTarget int64
	PotOpenedBonus   int
	Now              func() time.Time
}

// NewPotOpeningJob builds the pass that opens pots for accepted sponsorships
// once the birthday is within the configured offset. The pass only acts on
// sponsorships still missing a pot id, which is what makes re-runs safe.
func NewPotOpeningJob(params PotOpeningJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sponsorships == nil || params.Pots == nil {
		return nil, fmt.Errorf("sponsorship and pot collections required")
	}
	if params.Rewards == nil {
		return nil, fmt.Errorf("rewards service required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if params.OpenOffsetDays <= 0 {
		params.OpenOffsetDays = 30
	}
	if params.AdultAge <= 0 {
		params.AdultAge = 18
	}
	if params.DefaultPotTarget <= 0 {
		params.DefaultPotTarget = 50000
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &potOpeningJob{
		logg:          params.Logger,
		sponsorships:  params.Sponsorships,
		pots:          params.Pots,
		rewards:       params.Rewards,
		notifications: params.Notifications,
		openOffset:    params.OpenOffsetDays,
		adultAge:      params.AdultAge,
		defaultTarget: params.DefaultPotTarget,
		openedBonus:   params.PotOpenedBonus,
		now:           now,
	}, nil
}

type potOpeningJob struct {
	logg          *logger.Logger
	sponsorships  store.Collection[models.Sponsorship]
	pots          store.Collection[models.Pot]
	rewards       rewards.Service
	notifications notifications.Service
	openOffset    int
	adultAge      int
	defaultTarget int64
	openedBonus   int
	now           func() time.Time
}

func (j *potOpeningJob) Name() string { return "pot-opening" }

func (j *potOpeningJob) Run(ctx context.Context) error {
	eligible, err := j.sponsorships.FindMany(ctx, store.Filters{
		"status": enums.SponsorshipStatusAccepted,
		"pot_id": nil,
	}, store.QueryOptions{OrderBy: "created_at ASC"})
	if err != nil {
		return fmt.Errorf("query accepted sponsorships: %w", err)
	}

	today := dates.MidnightUTC(j.now())
	opened := 0
	var errs error
	for i := range eligible {
		sponsorship := eligible[i]
		birthday := dates.NextBirthday(sponsorship.InvitedBirthday, today)
		openDate := birthday.AddDate(0, 0, -j.openOffset)
		if today.Before(openDate) {
			continue
		}
		if err := j.openPot(ctx, &sponsorship, birthday); err != nil {
			j.logg.Error(ctx, "open pot for sponsorship "+sponsorship.ID.String(), err)
			errs = multierr.Append(errs, err)
			continue
		}
		opened++
	}

	j.logg.Info(j.logg.WithField(ctx, "count", opened), "pot opening pass complete")
	return errs
}

// openPot creates the pot, attaches it to the sponsorship, awards the sponsor
// bonus, and queues the two notifications. The sponsorship update is the
// idempotency latch: once pot_id is set the sponsorship leaves the eligible
// set, and the bonus is additionally guarded by a ledger existence check keyed
// on the sponsorship.
func (j *potOpeningJob) openPot(ctx context.Context, sponsorship *models.Sponsorship, birthday time.Time) error {
	beneficiary := sponsorship.SponsorUserID
	if sponsorship.InvitedUserID != nil {
		beneficiary = *sponsorship.InvitedUserID
	}

	// Adulthood is judged at the birthday the pot celebrates, not at open
	// time: someone turning 18 on that date gets an adult pot from day one.
	adult := dates.IsAdult(sponsorship.InvitedBirthday, birthday, j.adultAge)
	status := enums.PotStatusScheduled
	if adult {
		status = enums.PotStatusActive
	}

	sponsorshipID := sponsorship.ID
	pot := &models.Pot{
		ID:            uuid.New(),
		UserID:        beneficiary,
		SponsorshipID: &sponsorshipID,
		TargetAmount:  j.defaultTarget,
		BirthdayDate:  birthday,
		Status:        status,
		IsPublic:      adult,
		CreatedAt:     j.now().UTC(),
	}
	if err := j.pots.Create(ctx, pot); err != nil {
		return fmt.Errorf("create pot: %w", err)
	}

	sponsorship.PotID = &pot.ID
	if err := j.sponsorships.Update(ctx, sponsorship); err != nil {
		return fmt.Errorf("attach pot to sponsorship: %w", err)
	}

	if j.openedBonus > 0 {
		exists, err := j.rewards.HasEntry(ctx, enums.PointSourcePotOpened, sponsorship.ID)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := j.rewards.AwardPoints(ctx, rewards.AwardParams{
				UserID:      sponsorship.SponsorUserID,
				Type:        enums.PointTransactionTypeBonus,
				Points:      j.openedBonus,
				SourceType:  enums.PointSourcePotOpened,
				SourceID:    &sponsorshipID,
				Description: "sponsored pot opened",
			}); err != nil {
				return err
			}
		}
	}

	var errs error
	potID := pot.ID
	if _, err := j.notifications.Enqueue(ctx, notifications.EnqueueParams{
		UserID:    beneficiary,
		PotID:     &potID,
		Type:      enums.NotificationPotOpened,
		Channel:   enums.NotificationChannelSMS,
		Recipient: sponsorship.InvitedPhone,
		Title:     "Your birthday pot is open",
		Message:   fmt.Sprintf("%s, your birthday pot is now open", sponsorship.InvitedName),
	}); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := j.notifications.Enqueue(ctx, notifications.EnqueueParams{
		UserID:    sponsorship.SponsorUserID,
		PotID:     &potID,
		Type:      enums.NotificationPotOpenedSponsor,
		Channel:   enums.NotificationChannelInApp,
		Recipient: sponsorship.SponsorUserID.String(),
		Title:     "Sponsored pot opened",
		Message:   fmt.Sprintf("The pot for %s is now open", sponsorship.InvitedName),
	}); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
