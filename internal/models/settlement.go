package models

import "github.com/shopspring/decimal"

// Settlement represents a payment from a participant to an expense's payer.
// One is recorded each time a participation is marked settled.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// ExpenseID and ParticipationID reference the settled share.
	ExpenseID       string
	ParticipationID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (the expense payer).
	ToUserID string

	// Amount is the settled share.
	Amount decimal.Decimal

	// Method is how the payment was made.
	Method SettlementMethod

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}
