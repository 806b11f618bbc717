package domain

import "time"

// Cents is a monetary amount in integer cents of the single supported
// currency. Ledger rows carry signed amounts; balances are never negative.
type Cents int64

// HourlyRateCents is the flat global parking rate ($1/hour). There is
// deliberately no per-spot rate.
const HourlyRateCents Cents = 100

// PriceFor prices a booking window. Partial hours round up.
func PriceFor(start, end time.Time) Cents {
	d := end.Sub(start)
	hours := Cents(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours * HourlyRateCents
}
