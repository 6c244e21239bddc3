package enums

import "fmt"

// SponsorshipStatus describes the lifecycle of an invitation-based referral.
type SponsorshipStatus string

const (
	SponsorshipStatusPending  SponsorshipStatus = "pending"
	SponsorshipStatusAccepted SponsorshipStatus = "accepted"
	SponsorshipStatusRejected SponsorshipStatus = "rejected"
)

var validSponsorshipStatuses = []SponsorshipStatus{
	SponsorshipStatusPending,
	SponsorshipStatusAccepted,
	SponsorshipStatusRejected,
}

// IsValid reports whether the value matches the canonical sponsorship status enum.
func (s SponsorshipStatus) IsValid() bool {
	for _, candidate := range validSponsorshipStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the sponsorship can no longer change status.
func (s SponsorshipStatus) IsTerminal() bool {
	return s == SponsorshipStatusAccepted || s == SponsorshipStatusRejected
}

// ParseSponsorshipStatus converts the raw string to SponsorshipStatus.
func ParseSponsorshipStatus(value string) (SponsorshipStatus, error) {
	for _, candidate := range validSponsorshipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sponsorship status %q", value)
}
