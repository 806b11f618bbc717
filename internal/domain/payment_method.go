package domain

import "time"

// SavedPaymentMethod holds masked card metadata only. Full card numbers and
// CVVs never reach this core; tokenization lives with the external payment
// capability.
type SavedPaymentMethod struct {
	ID          string
	UserID      string
	Brand       string
	Last4       string
	ExpiryMonth int
	ExpiryYear  int
	HolderName  string
	CreatedAt   time.Time
}
