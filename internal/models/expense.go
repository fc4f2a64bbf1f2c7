package models

// SplitType is the policy used to divide an expense total into shares.
type SplitType string

const (
	SplitEqual      SplitType = "EQUAL"
	SplitPercentage SplitType = "PERCENTAGE"
	SplitCustom     SplitType = "CUSTOM"
)

// Valid reports whether t is one of the known split policies.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitCustom:
		return true
	}
	return false
}

// Expense represents a single recorded cost inside a group. Its shares are
// owned exclusively by the expense: created with it, replaced wholesale on
// update, deleted with it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	Description string

	// Amount is the positive total, a 2-decimal currency value.
	Amount float64

	// PaidBy is the user id of the payer.
	PaidBy string

	// GroupID is the owning group.
	GroupID string

	SplitType SplitType

	// Shares is the per-user allocation of Amount.
	Shares []ExpenseShare

	// Date is the Unix timestamp the expense applies to; group listings are
	// ordered by it, newest first.
	Date int64

	CreatedAt int64
	UpdatedAt int64
}

// ExpenseShare is one user's allocated portion of an expense.
type ExpenseShare struct {
	ID        string
	ExpenseID string
	UserID    string

	// Amount is this user's positive portion of the expense total.
	Amount float64

	// Percentage is only meaningful when the expense split type is
	// PERCENTAGE; zero otherwise.
	Percentage float64
}
