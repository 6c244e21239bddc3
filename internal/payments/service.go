// Package payments owns the donation state machine: initiation, webhook
// processing, refunds, and the reconciliation sweep. A donation reaches a
// terminal state exactly once; the terminal-state check in processing is what
// keeps provider retry storms from double-crediting a pot.
package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/terangalabs/kadoo-backend/internal/notifications"
	"github.com/terangalabs/kadoo-backend/internal/rewards"
	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
	"github.com/terangalabs/kadoo-backend/pkg/paydunya"
)

// Provider is the slice of the payment gateway this service needs.
type Provider interface {
	CreateCheckout(ctx context.Context, req paydunya.CheckoutRequest) (*paydunya.CheckoutResponse, error)
	CheckTransaction(ctx context.Context, reference string) (*paydunya.Transaction, error)
	Refund(ctx context.Context, reference string, amount int64) error
}

// Service defines payment operations.
type Service interface {
	InitiatePayment(ctx context.Context, params InitiateParams) (*InitiateResult, error)
	ProcessWebhook(ctx context.Context, event paydunya.WebhookEvent) error
	RefundDonation(ctx context.Context, donationID uuid.UUID, reason string) error
	ReconcilePayments(ctx context.Context) (int, error)
}

// Params wires payment dependencies.
type Params struct {
	Donations     store.Collection[models.Donation]
	Pots          store.Collection[models.Pot]
	Sponsorships  store.Collection[models.Sponsorship]
	Rewards       rewards.Service
	Notifications notifications.Service
	Provider      Provider
	FirstBonus    int
	PendingGrace  time.Duration
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	donations     store.Collection[models.Donation]
	pots          store.Collection[models.Pot]
	sponsorships  store.Collection[models.Sponsorship]
	rewards       rewards.Service
	notifications notifications.Service
	provider      Provider
	firstBonus    int
	pendingGrace  time.Duration
	logger        *logger.Logger
	now           func() time.Time
}

// NewService validates dependencies and returns the payments service.
func NewService(params Params) (Service, error) {
	if params.Donations == nil || params.Pots == nil || params.Sponsorships == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments collections required")
	}
	if params.Rewards == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments rewards service required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments notifications service required")
	}
	if params.Provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments provider required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments logger required")
	}
	if params.PendingGrace <= 0 {
		params.PendingGrace = 30 * time.Minute
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		donations:     params.Donations,
		pots:          params.Pots,
		sponsorships:  params.Sponsorships,
		rewards:       params.Rewards,
		notifications: params.Notifications,
		provider:      params.Provider,
		firstBonus:    params.FirstBonus,
		pendingGrace:  params.PendingGrace,
		logger:        params.Logger,
		now:           now,
	}, nil
}

// InitiateParams describes one payment attempt against a pot.
type InitiateParams struct {
	PotID     uuid.UUID
	Amount    int64
	DonorName string
}

// InitiateResult is returned to the donor-facing client. No money has moved
// yet; the donation stays pending until the provider reports back.
type InitiateResult struct {
	DonationID            uuid.UUID `json:"donation_id"`
	PaymentURL            string    `json:"payment_url"`
	ProviderTransactionID string    `json:"provider_transaction_id"`
}

func (s *service) InitiatePayment(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	if params.PotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pot id required")
	}
	if params.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation amount must be positive")
	}

	pot, err := s.pots.FindByID(ctx, params.PotID)
	if err != nil {
		return nil, err
	}
	if !pot.Status.AcceptsDonations() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pot is not accepting donations")
	}

	donationID := uuid.New()
	reference := "don-" + donationID.String()
	donation := &models.Donation{
		ID:                    donationID,
		PotID:                 pot.ID,
		DonorName:             params.DonorName,
		Amount:                params.Amount,
		Currency:              "XOF",
		Status:                enums.DonationStatusPending,
		ExternalTransactionID: reference,
		CreatedAt:             s.now().UTC(),
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}

	checkout, err := s.provider.CreateCheckout(ctx, paydunya.CheckoutRequest{
		Amount:    params.Amount,
		Currency:  donation.Currency,
		Reference: reference,
	})
	if err != nil {
		// The pending donation stays behind; the reconciliation sweep will
		// resolve it against the provider.
		return nil, err
	}

	s.logger.Info(s.logger.WithDonationID(ctx, donationID.String()), "payment initiated")
	return &InitiateResult{
		DonationID:            donationID,
		PaymentURL:            checkout.PaymentURL,
		ProviderTransactionID: checkout.ProviderTransactionID,
	}, nil
}

// targetStatus maps a provider status to the donation state it implies.
// Pending maps to empty: nothing to do yet.
func targetStatus(status paydunya.Status) enums.DonationStatus {
	switch status {
	case paydunya.StatusSuccess:
		return enums.DonationStatusCompleted
	case paydunya.StatusFailed, paydunya.StatusCancelled:
		return enums.DonationStatusFailed
	default:
		return ""
	}
}

func (s *service) ProcessWebhook(ctx context.Context, event paydunya.WebhookEvent) error {
	if event.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook reference required")
	}

	donation, err := s.findByReference(ctx, event.Reference)
	if err != nil {
		return err
	}
	ctx = s.logger.WithDonationID(ctx, donation.ID.String())

	target := targetStatus(event.Status)
	if target == "" {
		s.logger.Info(ctx, "webhook reports pending, nothing to apply")
		return nil
	}
	if donation.Status == target {
		if target == enums.DonationStatusCompleted {
			// Provider retry of an already-applied success. The money moved
			// on the first delivery, but bonuses or the owner notification
			// may have failed partway; all of them are existence-check
			// idempotent, so the redelivery re-runs them to fill the gap.
			s.logger.Info(ctx, "webhook replay for completed donation, re-checking side effects")
			return s.settleSideEffects(ctx, donation)
		}
		s.logger.Info(ctx, "webhook replay for settled donation, ignoring")
		return nil
	}
	if donation.Status.IsTerminal() {
		s.logger.Warn(ctx, fmt.Sprintf("webhook contradicts terminal state %s with %s, ignoring", donation.Status, event.Status))
		return nil
	}

	switch target {
	case enums.DonationStatusCompleted:
		return s.complete(ctx, donation, event.PaymentMethod)
	default:
		return s.fail(ctx, donation, "provider reported "+string(event.Status))
	}
}

// complete performs the pending→completed transition: donation first (the
// durable fact), then the pot total, then sponsor bonuses and the owner
// notification. Bonus or notification failures surface to the caller so the
// webhook controller releases its replay mark and the provider redelivers;
// the redelivery no-ops on the money and retries only the side effects.
func (s *service) complete(ctx context.Context, donation *models.Donation, paymentMethod string) error {
	now := s.now().UTC()
	donation.Status = enums.DonationStatusCompleted
	donation.ProcessedAt = &now
	if paymentMethod != "" {
		donation.PaymentMethod = &paymentMethod
	}
	if err := s.donations.Update(ctx, donation); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete donation")
	}

	pot, err := s.pots.FindByID(ctx, donation.PotID)
	if err != nil {
		return err
	}
	pot.CurrentAmount += donation.Amount
	if err := s.pots.Update(ctx, pot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment pot total")
	}
	s.logger.Info(s.logger.WithPotID(ctx, pot.ID.String()),
		fmt.Sprintf("donation of %d %s completed", donation.Amount, donation.Currency))

	sideEffects := s.runSideEffects(ctx, pot, donation)
	if sideEffects != nil {
		s.logger.Error(ctx, "donation side effects incomplete", sideEffects)
	}
	return sideEffects
}

// settleSideEffects reloads the pot and re-runs the completion side effects
// for an already-completed donation.
func (s *service) settleSideEffects(ctx context.Context, donation *models.Donation) error {
	pot, err := s.pots.FindByID(ctx, donation.PotID)
	if err != nil {
		return err
	}
	return s.runSideEffects(ctx, pot, donation)
}

func (s *service) runSideEffects(ctx context.Context, pot *models.Pot, donation *models.Donation) error {
	var errs error
	if err := s.awardSponsorBonuses(ctx, pot, donation); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.notifyOwner(ctx, pot, donation); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// awardSponsorBonuses runs growth-threshold evaluation and, on the pot's
// first completed donation, the fixed first-donation bonus. Both are
// existence-check idempotent, so re-running after a partial failure is safe.
func (s *service) awardSponsorBonuses(ctx context.Context, pot *models.Pot, donation *models.Donation) error {
	if pot.SponsorshipID == nil {
		return nil
	}
	sponsorship, err := s.sponsorships.FindByID(ctx, *pot.SponsorshipID)
	if err != nil {
		return err
	}

	var errs error
	if _, err := s.rewards.CalculatePotGrowthBonus(ctx, pot.ID, sponsorship.SponsorUserID); err != nil {
		errs = multierr.Append(errs, err)
	}

	first, err := s.isFirstCompletedDonation(ctx, pot.ID, donation.ID)
	if err != nil {
		return multierr.Append(errs, err)
	}
	if first && s.firstBonus > 0 {
		exists, err := s.rewards.HasEntry(ctx, enums.PointSourceFirstDonation, pot.ID)
		if err != nil {
			return multierr.Append(errs, err)
		}
		if !exists {
			potID := pot.ID
			if _, err := s.rewards.AwardPoints(ctx, rewards.AwardParams{
				UserID:      sponsorship.SponsorUserID,
				Type:        enums.PointTransactionTypeBonus,
				Points:      s.firstBonus,
				SourceType:  enums.PointSourceFirstDonation,
				SourceID:    &potID,
				Description: "first donation received on sponsored pot",
			}); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}

// isFirstCompletedDonation reports whether the given donation is the only
// completed one on the pot.
func (s *service) isFirstCompletedDonation(ctx context.Context, potID, donationID uuid.UUID) (bool, error) {
	rows, err := s.donations.FindMany(ctx, store.Filters{
		"pot_id": potID,
		"status": enums.DonationStatusCompleted,
	}, store.QueryOptions{Limit: 2})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed donations")
	}
	if len(rows) != 1 {
		return false, nil
	}
	return rows[0].ID == donationID, nil
}

// notifyOwner queues the donation-received message, at most once per
// donation so webhook redeliveries never double-notify.
func (s *service) notifyOwner(ctx context.Context, pot *models.Pot, donation *models.Donation) error {
	already, err := s.notifications.ExistsForDonation(ctx, donation.ID, enums.NotificationDonationReceived)
	if err != nil {
		return err
	}
	if already {
		return nil
	}
	donor := donation.DonorName
	if donor == "" {
		donor = "Someone"
	}
	potID := pot.ID
	donationID := donation.ID
	_, err = s.notifications.Enqueue(ctx, notifications.EnqueueParams{
		UserID:     pot.UserID,
		PotID:      &potID,
		DonationID: &donationID,
		Type:       enums.NotificationDonationReceived,
		Channel:    enums.NotificationChannelInApp,
		Recipient:  pot.UserID.String(),
		Title:      "New donation",
		Message:    fmt.Sprintf("%s contributed %d %s to your pot", donor, donation.Amount, donation.Currency),
	})
	return err
}

func (s *service) fail(ctx context.Context, donation *models.Donation, reason string) error {
	now := s.now().UTC()
	donation.Status = enums.DonationStatusFailed
	donation.FailureReason = &reason
	donation.ProcessedAt = &now
	if err := s.donations.Update(ctx, donation); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail donation")
	}
	s.logger.Info(ctx, "donation failed: "+reason)
	return nil
}

func (s *service) RefundDonation(ctx context.Context, donationID uuid.UUID, reason string) error {
	if donationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	donation, err := s.donations.FindByID(ctx, donationID)
	if err != nil {
		return err
	}
	ctx = s.logger.WithDonationID(ctx, donation.ID.String())
	if donation.Status != enums.DonationStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed donations can be refunded")
	}

	if err := s.provider.Refund(ctx, donation.ExternalTransactionID, donation.Amount); err != nil {
		return err
	}

	donation.Status = enums.DonationStatusRefunded
	if reason != "" {
		donation.FailureReason = &reason
	}
	if err := s.donations.Update(ctx, donation); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark donation refunded")
	}

	pot, err := s.pots.FindByID(ctx, donation.PotID)
	if err != nil {
		return err
	}
	pot.CurrentAmount -= donation.Amount
	if pot.CurrentAmount < 0 {
		pot.CurrentAmount = 0
	}
	if err := s.pots.Update(ctx, pot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement pot total")
	}

	// Previously awarded points stay: refunds do not claw back bonuses.
	s.logger.Info(ctx, "donation refunded")
	return nil
}

// ReconcilePayments resolves donations stuck in pending past the grace window
// by asking the provider for the authoritative status and applying the same
// transition logic as webhook processing. One bad donation never aborts the
// sweep. Returns the number of donations moved to a terminal state.
func (s *service) ReconcilePayments(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.pendingGrace)
	stuck, err := s.donations.FindMany(ctx, store.Filters{
		"status":       enums.DonationStatusPending,
		"created_at <": cutoff,
	}, store.QueryOptions{OrderBy: "created_at ASC"})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stuck donations")
	}

	resolved := 0
	var errs error
	for i := range stuck {
		donation := stuck[i]
		moved, err := s.reconcileOne(ctx, &donation)
		if err != nil {
			s.logger.Error(s.logger.WithDonationID(ctx, donation.ID.String()), "reconcile donation", err)
			errs = multierr.Append(errs, err)
			continue
		}
		if moved {
			resolved++
		}
	}
	return resolved, errs
}

func (s *service) reconcileOne(ctx context.Context, donation *models.Donation) (bool, error) {
	tx, err := s.provider.CheckTransaction(ctx, donation.ExternalTransactionID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			// The provider never saw this reference; the checkout was lost.
			return true, s.fail(ctx, donation, "unknown to payment provider")
		}
		return false, err
	}

	switch targetStatus(tx.Status) {
	case enums.DonationStatusCompleted:
		return true, s.complete(ctx, donation, tx.PaymentMethod)
	case enums.DonationStatusFailed:
		return true, s.fail(ctx, donation, "provider reported "+string(tx.Status))
	default:
		return false, nil
	}
}

func (s *service) findByReference(ctx context.Context, reference string) (*models.Donation, error) {
	rows, err := s.donations.FindMany(ctx, store.Filters{"external_transaction_id": reference}, store.QueryOptions{Limit: 1})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up donation")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown transaction reference")
	}
	return &rows[0], nil
}
