package enums

import "fmt"

// PointTransactionType classifies an immutable ledger entry.
type PointTransactionType string

const (
	PointTransactionTypeEarned  PointTransactionType = "earned"
	PointTransactionTypeBonus   PointTransactionType = "bonus"
	PointTransactionTypeSpent   PointTransactionType = "spent"
	PointTransactionTypeExpired PointTransactionType = "expired"
)

var validPointTransactionTypes = []PointTransactionType{
	PointTransactionTypeEarned,
	PointTransactionTypeBonus,
	PointTransactionTypeSpent,
	PointTransactionTypeExpired,
}

// IsValid reports whether the value matches the canonical point transaction type enum.
func (p PointTransactionType) IsValid() bool {
	for _, candidate := range validPointTransactionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsCredit reports whether entries of this type may carry a positive amount.
func (p PointTransactionType) IsCredit() bool {
	return p == PointTransactionTypeEarned || p == PointTransactionTypeBonus
}

// ParsePointTransactionType converts the raw string to PointTransactionType.
func ParsePointTransactionType(value string) (PointTransactionType, error) {
	for _, candidate := range validPointTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point transaction type %q", value)
}

// PointSourceType names the trigger that produced a ledger entry. Together with
// the source id it forms the key callers use for existence-check idempotency.
type PointSourceType string

const (
	PointSourceDonation      PointSourceType = "donation"
	PointSourcePotGrowth     PointSourceType = "pot_growth_bonus"
	PointSourceFirstDonation PointSourceType = "first_donation_bonus"
	PointSourcePotOpened     PointSourceType = "pot_open_bonus"
	PointSourceConversion    PointSourceType = "points_conversion"
	PointSourcePotCredit     PointSourceType = "pot_credit"
	PointSourceAdmin         PointSourceType = "admin_adjustment"
)

var validPointSourceTypes = []PointSourceType{
	PointSourceDonation,
	PointSourcePotGrowth,
	PointSourceFirstDonation,
	PointSourcePotOpened,
	PointSourceConversion,
	PointSourcePotCredit,
	PointSourceAdmin,
}

// IsValid reports whether the value matches the canonical point source type enum.
func (p PointSourceType) IsValid() bool {
	for _, candidate := range validPointSourceTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePointSourceType converts the raw string to PointSourceType.
func ParsePointSourceType(value string) (PointSourceType, error) {
	for _, candidate := range validPointSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point source type %q", value)
}
