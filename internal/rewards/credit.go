package rewards

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
)

type growthMetadata struct {
	Threshold int64 `json:"threshold"`
}

// CalculatePotGrowthBonus evaluates the configured growth thresholds against
// the pot's current total and awards the sponsor each newly reached one.
// Idempotency is per threshold: an existing bonus entry for (pot, threshold)
// suppresses a second award, so re-evaluation after every donation is safe.
// Returns the total points awarded by this call.
func (s *service) CalculatePotGrowthBonus(ctx context.Context, potID, sponsorUserID uuid.UUID) (int, error) {
	if potID == uuid.Nil || sponsorUserID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "pot id and sponsor user id required")
	}

	pot, err := s.pots.FindByID(ctx, potID)
	if err != nil {
		return 0, err
	}

	existing, err := s.transactions.FindMany(ctx, store.Filters{
		"source_type": enums.PointSourcePotGrowth,
		"source_id":   potID,
	}, store.QueryOptions{})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load prior growth bonuses")
	}
	awarded := make(map[int64]bool, len(existing))
	for _, entry := range existing {
		var meta growthMetadata
		if len(entry.Metadata) == 0 {
			continue
		}
		if err := json.Unmarshal(entry.Metadata, &meta); err != nil {
			s.logger.Warn(ctx, "growth bonus entry has unreadable metadata: "+entry.ID.String())
			continue
		}
		awarded[meta.Threshold] = true
	}

	total := 0
	for _, rule := range s.rules.GrowthRules {
		if pot.CurrentAmount < rule.Threshold || awarded[rule.Threshold] {
			continue
		}
		meta, err := json.Marshal(growthMetadata{Threshold: rule.Threshold})
		if err != nil {
			return total, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode growth metadata")
		}
		sourceID := potID
		if _, err := s.AwardPoints(ctx, AwardParams{
			UserID:      sponsorUserID,
			Type:        enums.PointTransactionTypeBonus,
			Points:      rule.Points,
			SourceType:  enums.PointSourcePotGrowth,
			SourceID:    &sourceID,
			Metadata:    meta,
			Description: fmt.Sprintf("pot reached %d FCFA", rule.Threshold),
		}); err != nil {
			return total, err
		}
		total += rule.Points
	}
	return total, nil
}

// CreditResult reports how a pot credit application split between the pot and
// the carried-over remainder.
type CreditResult struct {
	PotID      uuid.UUID `json:"pot_id"`
	AppliedCFA int64     `json:"applied_cfa"`
	Remainder  int64     `json:"remainder_cfa"`
}

// ApplyCreditToPot spends points as a credit on the user's nearest upcoming
// pot. The credited amount is capped at a percentage of the pot target; the
// unapplied remainder persists on the aggregate and rides along with the next
// application. The credit lands on the pot as a completed donation so the
// pot-total invariant keeps holding.
func (s *service) ApplyCreditToPot(ctx context.Context, userID uuid.UUID, points int) (*CreditResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if points < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must not be negative")
	}

	aggregate, err := s.loadOrCreateAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if aggregate.AvailablePoints < points {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints,
			fmt.Sprintf("%d points available, %d requested", aggregate.AvailablePoints, points))
	}

	pot, err := s.nearestUpcomingPot(ctx, userID)
	if err != nil {
		return nil, err
	}

	credit := s.toCFA(points) + aggregate.PendingCreditCFA
	if credit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to apply")
	}
	capAmount := decimal.NewFromInt(pot.TargetAmount).
		Mul(decimal.NewFromInt(int64(s.rules.CreditCapPercent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	applied := credit
	if applied > capAmount {
		applied = capAmount
	}

	// The credit donation is the durable fact and goes first. If the spend
	// entry below fails, the user keeps both the landed value and the points;
	// the persisted donation is the trace for reconciling the missing entry.
	donationID := uuid.New()
	if applied > 0 {
		now := s.now().UTC()
		donation := &models.Donation{
			ID:                    donationID,
			PotID:                 pot.ID,
			DonorName:             "Points credit",
			Amount:                applied,
			Currency:              "XOF",
			Status:                enums.DonationStatusCompleted,
			ExternalTransactionID: "credit-" + donationID.String(),
			ProcessedAt:           &now,
			CreatedAt:             now,
		}
		if err := s.donations.Create(ctx, donation); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record credit donation")
		}
		pot.CurrentAmount += applied
		if err := s.pots.Update(ctx, pot); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply credit to pot total")
		}
	}

	if points > 0 {
		meta, err := json.Marshal(map[string]int64{"applied_cfa": applied, "remainder_cfa": credit - applied})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode credit metadata")
		}
		params := AwardParams{
			UserID:      userID,
			Type:        enums.PointTransactionTypeSpent,
			Points:      -points,
			SourceType:  enums.PointSourcePotCredit,
			Metadata:    meta,
			Description: fmt.Sprintf("applied %d FCFA credit to pot", applied),
		}
		if applied > 0 {
			sourceID := donationID
			params.SourceID = &sourceID
		}
		if _, err := s.AwardPoints(ctx, params); err != nil {
			return nil, err
		}
		// AwardPoints rewrote the aggregate; reload before touching the
		// pending balance so we do not resurrect stale counters.
		aggregate, err = s.findAggregate(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	aggregate.PendingCreditCFA = credit - applied
	if err := s.aggregates.Update(ctx, aggregate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pending credit")
	}

	s.logger.Info(s.logger.WithPotID(ctx, pot.ID.String()),
		fmt.Sprintf("applied %d FCFA credit, %d FCFA carried forward", applied, credit-applied))
	return &CreditResult{PotID: pot.ID, AppliedCFA: applied, Remainder: credit - applied}, nil
}

// nearestUpcomingPot returns the user's open pot with the earliest birthday.
func (s *service) nearestUpcomingPot(ctx context.Context, userID uuid.UUID) (*models.Pot, error) {
	rows, err := s.pots.FindMany(ctx, store.Filters{"user_id": userID}, store.QueryOptions{
		OrderBy: "birthday_date ASC",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user pots")
	}
	open := rows[:0]
	for _, pot := range rows {
		if pot.Status == enums.PotStatusActive || pot.Status == enums.PotStatusScheduled {
			open = append(open, pot)
		}
	}
	if len(open) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open pot to credit")
	}
	return &open[0], nil
}
