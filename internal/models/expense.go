package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitMethod is the algorithm used to divide an expense among participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitPercentage SplitMethod = "percentage"
)

// ParseSplitMethod converts a wire value to a SplitMethod.
// An empty string means equal, matching the API default.
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch m := SplitMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SplitEqual, nil
	case SplitEqual, SplitExact, SplitPercentage:
		return m, nil
	default:
		return "", fmt.Errorf("unknown split method %q", s)
	}
}

// SettlementMethod records how a participation was paid.
type SettlementMethod string

const (
	SettleCash         SettlementMethod = "cash"
	SettleOnline       SettlementMethod = "online"
	SettleBankTransfer SettlementMethod = "bank_transfer"
	SettleOther        SettlementMethod = "other"
)

// ParseSettlementMethod converts a wire value to a SettlementMethod.
// An empty string means cash.
func ParseSettlementMethod(s string) (SettlementMethod, error) {
	switch m := SettlementMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SettleCash, nil
	case SettleCash, SettleOnline, SettleBankTransfer, SettleOther:
		return m, nil
	default:
		return "", fmt.Errorf("unknown settlement method %q", s)
	}
}

// DefaultCategory is used when an expense is created without a category.
const DefaultCategory = "general"

// Expense represents one shared cost paid by a single member.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// Title is the short human-readable name (e.g., "Groceries").
	Title string

	// Description is optional free text.
	Description string

	// Amount is the total paid, in currency units with two decimals.
	Amount decimal.Decimal

	// Category groups expenses for statistics (food, transport, ...).
	Category string

	// PayerID is the member who paid the full amount.
	PayerID string

	// CreatedBy is the member who logged the expense.
	CreatedBy string

	// SplitMethod is how Participations were computed.
	SplitMethod SplitMethod

	// ExpenseDate is the Unix timestamp when the expense occurred.
	ExpenseDate int64

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64

	// Participations are ordered by Position.
	Participations []Participation
}

// HasSettledParticipation reports whether any share has been paid.
func (e *Expense) HasSettledParticipation() bool {
	for _, p := range e.Participations {
		if p.Paid {
			return true
		}
	}
	return false
}

// FullySettled reports whether every share has been paid.
func (e *Expense) FullySettled() bool {
	for _, p := range e.Participations {
		if !p.Paid {
			return false
		}
	}
	return true
}

// Participation returns the participation of memberID.
func (e *Expense) Participation(memberID string) (Participation, bool) {
	for _, p := range e.Participations {
		if p.MemberID == memberID {
			return p, true
		}
	}
	return Participation{}, false
}

// Participation is one member's owed share of one expense.
type Participation struct {
	ID        string
	ExpenseID string
	MemberID  string

	// Position is the participant's index in the split input.
	Position int

	// Share is the amount this member owes the payer.
	Share decimal.Decimal

	// Paid flips from false to true once, on settlement.
	Paid bool

	// Method and SettledAt are set when Paid becomes true.
	Method    SettlementMethod
	SettledAt int64
}
