package engine

import (
	"math"

	"atlasledger/internal/core"
)

// RecurrenceDetector decides whether a transaction is likely part of a
// recurring charge. It is a heuristic: false positives and negatives are
// acceptable. The interface exists so an indexed implementation can be
// swapped in without touching the classification contract.
type RecurrenceDetector interface {
	IsLikelyRecurring(u *core.User, tx *core.Transaction) bool
}

// WindowDetector flags monthly-cadence charges by scanning the owning
// account for similar amounts 25-35 days apart. The pairwise scan is
// O(n) per transaction and O(n^2) for a full account rebuild; accepted
// at prototype data sizes (tens to low thousands of rows).
type WindowDetector struct {
	MinDays int
	MaxDays int
}

// NewWindowDetector returns a detector with the monthly 25-35 day window.
func NewWindowDetector() *WindowDetector {
	return &WindowDetector{MinDays: 25, MaxDays: 35}
}

// IsLikelyRecurring reports a match when at least two same-account
// transactions land in the amount tolerance and the monthly window, or
// one does and the amount is an exact multiple of 100. Undated or
// zero-amount transactions never match.
func (d *WindowDetector) IsLikelyRecurring(u *core.User, tx *core.Transaction) bool {
	if tx.Date.IsZero() {
		return false
	}
	amount := math.Abs(tx.Amount)
	if amount == 0 {
		return false
	}
	tolerance := math.Max(1, amount*0.02)

	matches := 0
	for _, other := range u.Transactions {
		if other.ID == tx.ID || other.AccountID != tx.AccountID {
			continue
		}
		if other.Date.IsZero() {
			continue
		}
		if math.Abs(math.Abs(other.Amount)-amount) > tolerance {
			continue
		}
		days := core.DaysBetween(tx.Date, other.Date)
		if days < d.MinDays || days > d.MaxDays {
			continue
		}
		matches++
		if matches >= 2 {
			return true
		}
	}
	return matches >= 1 && isRoundHundred(amount)
}

// isRoundHundred reports whether the amount is an exact multiple of 100
// in its plain numeric form (e.g. 500.00, not 499.99).
func isRoundHundred(amount float64) bool {
	return math.Abs(math.Mod(amount, 100)) < 1e-9
}
