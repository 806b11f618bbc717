package domain

import "time"

// MinBookingDuration is the shortest bookable window.
const MinBookingDuration = time.Hour

// CancellationNotice is how far before start a booking may still be canceled.
const CancellationNotice = 2 * time.Hour

// NextWholeHour returns the next whole-hour boundary at or after now.
// An instant exactly on the hour is its own boundary.
func NextWholeHour(now time.Time) time.Time {
	t := now.Truncate(time.Hour)
	if t.Before(now) {
		t = t.Add(time.Hour)
	}
	return t
}

// ValidateWindow enforces the structural booking-window rules: end after
// start, at least the minimum duration, and start no earlier than the next
// whole-hour boundary from now.
func ValidateWindow(now, start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidWindow
	}
	if end.Sub(start) < MinBookingDuration {
		return ErrInvalidWindow
	}
	if start.Before(NextWholeHour(now)) {
		return ErrInvalidWindow
	}
	return nil
}
