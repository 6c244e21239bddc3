package enums

import "fmt"

// InvitationStatus tracks a guest's answer to a birthday invitation.
type InvitationStatus string

const (
	InvitationStatusInvited   InvitationStatus = "invited"
	InvitationStatusConfirmed InvitationStatus = "confirmed"
	InvitationStatusDeclined  InvitationStatus = "declined"
)

var validInvitationStatuses = []InvitationStatus{
	InvitationStatusInvited,
	InvitationStatusConfirmed,
	InvitationStatusDeclined,
}

// IsValid reports whether the value matches the canonical invitation status enum.
func (i InvitationStatus) IsValid() bool {
	for _, candidate := range validInvitationStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInvitationStatus converts the raw string to InvitationStatus.
func ParseInvitationStatus(value string) (InvitationStatus, error) {
	for _, candidate := range validInvitationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invitation status %q", value)
}
