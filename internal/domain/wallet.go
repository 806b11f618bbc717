package domain

import "time"

// Wallet is the materialized balance for one user. It is kept in sync with
// the transaction history by the same database transaction that appends a
// ledger row, and must always equal the sum of that history.
type Wallet struct {
	UserID    string
	Balance   Cents
	UpdatedAt time.Time
}

// WalletTransaction is an append-only ledger entry. Amount is signed:
// positive for credits, negative for debits. Entries are never mutated or
// deleted.
type WalletTransaction struct {
	ID          string
	UserID      string
	Amount      Cents
	Description string
	// BookingID references the booking that caused the entry, if any.
	BookingID string
	CreatedAt time.Time
}
