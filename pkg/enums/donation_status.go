package enums

import "fmt"

// DonationStatus describes the state machine of a single payment attempt.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
	DonationStatusRefunded  DonationStatus = "refunded"
)

var validDonationStatuses = []DonationStatus{
	DonationStatusPending,
	DonationStatusCompleted,
	DonationStatusFailed,
	DonationStatusRefunded,
}

// IsValid reports whether the value matches the canonical donation status enum.
func (d DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the webhook processor may no longer transition the donation.
// Refunds are a separate admin path out of completed.
func (d DonationStatus) IsTerminal() bool {
	return d == DonationStatusCompleted || d == DonationStatusFailed || d == DonationStatusRefunded
}

// ParseDonationStatus converts the raw string to DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}
