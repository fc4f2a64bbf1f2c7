// Package split implements the pure share-allocation logic. It turns one
// expense total into per-user shares under the three split policies and
// never touches storage.
package split

import (
	"math"

	"github.com/divvyhq/divvy/internal/apperr"
)

// Share is one user's computed portion of a total.
type Share struct {
	UserID string
	Amount float64
	// Percentage is set only by the percentage policy.
	Percentage float64
}

// PercentEntry is a percentage-policy input.
type PercentEntry struct {
	UserID     string
	Percentage float64
}

// AmountEntry is a custom-policy input.
type AmountEntry struct {
	UserID string
	Amount float64
}

// Round2 rounds to 2 decimals, half away from zero (half-up for the
// positive currency values used here).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Equal divides total evenly across memberIDs. Every share is
// round(total/n, 2); the rounding remainder is NOT redistributed, so the sum
// of shares can differ from total by up to n-1 cents.
func Equal(total float64, memberIDs []string) ([]Share, error) {
	if len(memberIDs) == 0 {
		return nil, apperr.Validation("expense", "equal split requires at least one member")
	}

	amount := Round2(total / float64(len(memberIDs)))
	shares := make([]Share, len(memberIDs))
	for i, id := range memberIDs {
		shares[i] = Share{UserID: id, Amount: amount}
	}
	return shares, nil
}

// Percentage allocates round(total*pct/100, 2) per entry. Percentages are
// not required to sum to 100; that responsibility sits with the caller.
func Percentage(total float64, entries []PercentEntry) ([]Share, error) {
	if len(entries) == 0 {
		return nil, apperr.Validation("expense", "percentage split requires at least one share")
	}

	shares := make([]Share, len(entries))
	for i, e := range entries {
		shares[i] = Share{
			UserID:     e.UserID,
			Amount:     Round2(total * e.Percentage / 100),
			Percentage: e.Percentage,
		}
	}
	return shares, nil
}

// Custom uses each entry's stated amount verbatim. Amounts are not validated
// against the expense total.
func Custom(entries []AmountEntry) ([]Share, error) {
	if len(entries) == 0 {
		return nil, apperr.Validation("expense", "custom split requires at least one share")
	}

	shares := make([]Share, len(entries))
	for i, e := range entries {
		shares[i] = Share{UserID: e.UserID, Amount: e.Amount}
	}
	return shares, nil
}
