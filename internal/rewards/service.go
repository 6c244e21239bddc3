// Package rewards owns point balances, the append-only ledger, levels, and
// point-to-CFA conversion. The store has no cross-collection transactions, so
// every operation writes the ledger entry first and the aggregate second;
// a retry can detect a partial write by re-checking for the entry.
package rewards

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terangalabs/kadoo-backend/internal/store"
	"github.com/terangalabs/kadoo-backend/pkg/config"
	"github.com/terangalabs/kadoo-backend/pkg/db/models"
	"github.com/terangalabs/kadoo-backend/pkg/enums"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// Service defines the rewards ledger operations.
type Service interface {
	// AwardPoints appends one ledger entry and updates the aggregate. It does
	// NOT deduplicate by source: callers own idempotency via HasEntry.
	AwardPoints(ctx context.Context, params AwardParams) (*models.PointTransaction, error)
	// HasEntry reports whether a ledger entry with the given source already
	// exists. This is the existence check callers run before AwardPoints.
	HasEntry(ctx context.Context, sourceType enums.PointSourceType, sourceID uuid.UUID) (bool, error)
	CalculatePotGrowthBonus(ctx context.Context, potID, sponsorUserID uuid.UUID) (int, error)
	ConvertPointsToCFA(ctx context.Context, userID uuid.UUID, points int) (int64, error)
	ApplyCreditToPot(ctx context.Context, userID uuid.UUID, points int) (*CreditResult, error)
	CalculateLevel(lifetimePoints int) enums.PointsLevel
	GetUserPointsStatus(ctx context.Context, userID uuid.UUID) (*PointsStatus, error)
}

// Params wires rewards dependencies.
type Params struct {
	Transactions store.Collection[models.PointTransaction]
	Aggregates   store.Collection[models.UserPoints]
	Pots         store.Collection[models.Pot]
	Donations    store.Collection[models.Donation]
	Rules        config.RewardsConfig
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	transactions store.Collection[models.PointTransaction]
	aggregates   store.Collection[models.UserPoints]
	pots         store.Collection[models.Pot]
	donations    store.Collection[models.Donation]
	rules        config.RewardsConfig
	logger       *logger.Logger
	now          func() time.Time
}

// NewService validates dependencies and returns the rewards service.
func NewService(params Params) (Service, error) {
	if params.Transactions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rewards transactions collection required")
	}
	if params.Aggregates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rewards aggregates collection required")
	}
	if params.Pots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rewards pots collection required")
	}
	if params.Donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rewards donations collection required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rewards logger required")
	}
	if params.Rules.ConversionPoints <= 0 || params.Rules.ConversionCFA <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rewards conversion rate must be positive")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		transactions: params.Transactions,
		aggregates:   params.Aggregates,
		pots:         params.Pots,
		donations:    params.Donations,
		rules:        params.Rules,
		logger:       params.Logger,
		now:          now,
	}, nil
}

// AwardParams describes one signed ledger entry.
type AwardParams struct {
	UserID      uuid.UUID
	Type        enums.PointTransactionType
	Points      int
	SourceType  enums.PointSourceType
	SourceID    *uuid.UUID
	Metadata    json.RawMessage
	Description string
}

func (s *service) AwardPoints(ctx context.Context, params AwardParams) (*models.PointTransaction, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if !params.SourceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid source type")
	}
	if params.Points == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must be non-zero")
	}
	if params.Type.IsCredit() != (params.Points > 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points sign does not match transaction type")
	}

	aggregate, err := s.loadOrCreateAggregate(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if params.Points < 0 && aggregate.AvailablePoints+params.Points < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints, "available points cannot go negative")
	}

	entry := &models.PointTransaction{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Type:        params.Type,
		Points:      params.Points,
		SourceType:  params.SourceType,
		SourceID:    params.SourceID,
		Metadata:    params.Metadata,
		Description: params.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.transactions.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}

	s.apply(aggregate, params.Points)
	if err := s.aggregates.Update(ctx, aggregate); err != nil {
		// The entry is the durable fact; a retry sees it via HasEntry and
		// must not append again.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update points aggregate")
	}

	s.logger.Info(s.logger.WithUserID(ctx, params.UserID.String()),
		fmt.Sprintf("awarded %d points (%s)", params.Points, params.SourceType))
	return entry, nil
}

// apply folds one signed entry into the aggregate counters. LifetimePoints
// only ever increases.
func (s *service) apply(aggregate *models.UserPoints, points int) {
	aggregate.TotalPoints += points
	aggregate.AvailablePoints += points
	if points > 0 {
		aggregate.LifetimePoints += points
	}
	aggregate.CurrentLevel = s.CalculateLevel(aggregate.LifetimePoints)
}

func (s *service) HasEntry(ctx context.Context, sourceType enums.PointSourceType, sourceID uuid.UUID) (bool, error) {
	rows, err := s.transactions.FindMany(ctx, store.Filters{
		"source_type": sourceType,
		"source_id":   sourceID,
	}, store.QueryOptions{Limit: 1})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ledger entry")
	}
	return len(rows) > 0, nil
}

func (s *service) CalculateLevel(lifetimePoints int) enums.PointsLevel {
	switch {
	case lifetimePoints >= s.rules.LevelPlatinumMin:
		return enums.PointsLevelPlatinum
	case lifetimePoints >= s.rules.LevelGoldMin:
		return enums.PointsLevelGold
	case lifetimePoints >= s.rules.LevelSilverMin:
		return enums.PointsLevelSilver
	default:
		return enums.PointsLevelBronze
	}
}

func (s *service) ConvertPointsToCFA(ctx context.Context, userID uuid.UUID, points int) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if points <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "points to convert must be positive")
	}

	aggregate, err := s.loadOrCreateAggregate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if aggregate.AvailablePoints < points {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientPoints,
			fmt.Sprintf("%d points available, %d requested", aggregate.AvailablePoints, points))
	}

	amount := s.toCFA(points)
	if _, err := s.AwardPoints(ctx, AwardParams{
		UserID:      userID,
		Type:        enums.PointTransactionTypeSpent,
		Points:      -points,
		SourceType:  enums.PointSourceConversion,
		Description: fmt.Sprintf("converted %d points to %d FCFA", points, amount),
	}); err != nil {
		return 0, err
	}
	return amount, nil
}

// toCFA converts points at the configured rate, rounding down to whole CFA.
func (s *service) toCFA(points int) int64 {
	return decimal.NewFromInt(int64(points)).
		Mul(decimal.NewFromInt(s.rules.ConversionCFA)).
		Div(decimal.NewFromInt(int64(s.rules.ConversionPoints))).
		Floor().
		IntPart()
}

// RateString renders the conversion rate for display.
func (s *service) rateString() string {
	return fmt.Sprintf("%d points = %d FCFA", s.rules.ConversionPoints, s.rules.ConversionCFA)
}

// PointsStatus is the ledger read model for one user.
type PointsStatus struct {
	UserID          uuid.UUID                 `json:"user_id"`
	TotalPoints     int                       `json:"total_points"`
	AvailablePoints int                       `json:"available_points"`
	LifetimePoints  int                       `json:"lifetime_points"`
	CurrentLevel    enums.PointsLevel         `json:"current_level"`
	PendingCredit   int64                     `json:"pending_credit_cfa"`
	ConversionRate  string                    `json:"conversion_rate"`
	RecentEntries   []models.PointTransaction `json:"recent_entries"`
}

func (s *service) GetUserPointsStatus(ctx context.Context, userID uuid.UUID) (*PointsStatus, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	status := &PointsStatus{
		UserID:         userID,
		CurrentLevel:   enums.PointsLevelBronze,
		ConversionRate: s.rateString(),
	}

	aggregate, err := s.findAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if aggregate != nil {
		status.TotalPoints = aggregate.TotalPoints
		status.AvailablePoints = aggregate.AvailablePoints
		status.LifetimePoints = aggregate.LifetimePoints
		status.CurrentLevel = aggregate.CurrentLevel
		status.PendingCredit = aggregate.PendingCreditCFA
	}

	entries, err := s.transactions.FindMany(ctx, store.Filters{"user_id": userID}, store.QueryOptions{
		Limit:   10,
		OrderBy: "created_at DESC",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent ledger entries")
	}
	status.RecentEntries = entries
	return status, nil
}

func (s *service) findAggregate(ctx context.Context, userID uuid.UUID) (*models.UserPoints, error) {
	rows, err := s.aggregates.FindMany(ctx, store.Filters{"user_id": userID}, store.QueryOptions{Limit: 1})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load points aggregate")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// loadOrCreateAggregate lazily creates the per-user snapshot on first use.
func (s *service) loadOrCreateAggregate(ctx context.Context, userID uuid.UUID) (*models.UserPoints, error) {
	aggregate, err := s.findAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if aggregate != nil {
		return aggregate, nil
	}

	aggregate = &models.UserPoints{
		ID:           uuid.New(),
		UserID:       userID,
		CurrentLevel: enums.PointsLevelBronze,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.aggregates.Create(ctx, aggregate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create points aggregate")
	}
	return aggregate, nil
}
