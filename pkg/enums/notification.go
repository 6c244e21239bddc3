package enums

import "fmt"

// NotificationType identifies what a queued notification is about. Reminder
// types encode their day offset so the scheduler can check for an existing
// reminder of that exact offset before queueing a new one.
type NotificationType string

const (
	NotificationSponsorshipInvite NotificationType = "sponsorship_invite"
	NotificationPotOpened         NotificationType = "pot_opened"
	NotificationPotOpenedSponsor  NotificationType = "pot_opened_sponsor"
	NotificationReminderJ7        NotificationType = "birthday_reminder_j7"
	NotificationReminderJ3        NotificationType = "birthday_reminder_j3"
	NotificationReminderJ1        NotificationType = "birthday_reminder_j1"
	NotificationDonationReceived  NotificationType = "donation_received"
	NotificationPotClosed         NotificationType = "pot_closed"
	NotificationVoucherIssued     NotificationType = "voucher_issued"
)

var validNotificationTypes = []NotificationType{
	NotificationSponsorshipInvite,
	NotificationPotOpened,
	NotificationPotOpenedSponsor,
	NotificationReminderJ7,
	NotificationReminderJ3,
	NotificationReminderJ1,
	NotificationDonationReceived,
	NotificationPotClosed,
	NotificationVoucherIssued,
}

// IsValid reports whether the value matches the canonical notification type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ReminderTypeForOffset maps a days-before-birthday offset to its reminder type.
func ReminderTypeForOffset(days int) (NotificationType, error) {
	switch days {
	case 7:
		return NotificationReminderJ7, nil
	case 3:
		return NotificationReminderJ3, nil
	case 1:
		return NotificationReminderJ1, nil
	default:
		return "", fmt.Errorf("no reminder type for offset %d", days)
	}
}

// NotificationChannel is the delivery transport requested for a notification.
type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelSMS      NotificationChannel = "sms"
	NotificationChannelWhatsApp NotificationChannel = "whatsapp"
	NotificationChannelInApp    NotificationChannel = "in_app"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelEmail,
	NotificationChannelSMS,
	NotificationChannelWhatsApp,
	NotificationChannelInApp,
}

// IsValid reports whether the value matches the canonical notification channel enum.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// NotificationStatus tracks delivery progress. This core only ever writes
// pending rows; the external delivery system owns the rest.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusPending,
	NotificationStatusSent,
	NotificationStatusFailed,
}

// IsValid reports whether the value matches the canonical notification status enum.
func (n NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == n {
			return true
		}
	}
	return false
}
