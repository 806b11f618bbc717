package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// Terminal reports whether no further status transitions are permitted.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCanceled
}

type PaymentKind string

const (
	PaymentWallet PaymentKind = "wallet"
	PaymentCard   PaymentKind = "card"
)

// Booking reserves a spot for a half-open [Start, End) window.
// For any spot the windows of bookings with status in {pending, confirmed}
// are pairwise non-overlapping.
type Booking struct {
	ID        string
	UserID    string
	SpotID    string
	Start     time.Time
	End       time.Time
	Price     Cents
	Payment   PaymentKind
	Status    BookingStatus
	CreatedAt time.Time
}

// Overlaps is the standard half-open interval test: a booking ending exactly
// at start does not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
