// Package dates holds the calendar arithmetic the scheduler depends on. All
// dates are normalized to midnight UTC so equality filters on date columns
// behave deterministically.
package dates

import "time"

// MidnightUTC truncates a timestamp to its UTC calendar day.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextBirthday returns the next occurrence of the birth date's month and day
// at or after today. A Feb 29 birthday falls on Mar 1 in non-leap years.
func NextBirthday(birthday, today time.Time) time.Time {
	today = MidnightUTC(today)
	next := time.Date(today.Year(), birthday.UTC().Month(), birthday.UTC().Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.UTC().Month(), birthday.UTC().Day(), 0, 0, 0, 0, time.UTC)
	}
	return next
}

// Age returns full years elapsed between the birth date and today.
func Age(birthday, today time.Time) int {
	birthday = MidnightUTC(birthday)
	today = MidnightUTC(today)
	years := today.Year() - birthday.Year()
	anniversary := birthday.AddDate(years, 0, 0)
	if anniversary.After(today) {
		years--
	}
	return years
}

// IsAdult reports whether the person is at least adultAge years old today.
func IsAdult(birthday, today time.Time, adultAge int) bool {
	return Age(birthday, today) >= adultAge
}

// EndOfDayElapsed reports whether the calendar day of the given date is fully
// over at the reference instant.
func EndOfDayElapsed(date, now time.Time) bool {
	return !now.UTC().Before(MidnightUTC(date).AddDate(0, 0, 1))
}
