package enums

import "fmt"

// PotStatus describes the lifecycle of a birthday pot.
type PotStatus string

const (
	PotStatusScheduled PotStatus = "scheduled"
	PotStatusActive    PotStatus = "active"
	PotStatusClosed    PotStatus = "closed"
)

var validPotStatuses = []PotStatus{
	PotStatusScheduled,
	PotStatusActive,
	PotStatusClosed,
}

// IsValid reports whether the value matches the canonical pot status enum.
func (p PotStatus) IsValid() bool {
	for _, candidate := range validPotStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// AcceptsDonations reports whether donations may still be initiated against the pot.
func (p PotStatus) AcceptsDonations() bool {
	return p == PotStatusActive
}

// ParsePotStatus converts the raw string to PotStatus.
func ParsePotStatus(value string) (PotStatus, error) {
	for _, candidate := range validPotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pot status %q", value)
}
