package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/models"
)

var (
	cent    = decimal.New(1, -2)
	hundred = decimal.NewFromInt(100)

	// MaxAmount is the largest money value the ledger stores.
	MaxAmount = decimal.RequireFromString("99999999.99")
)

// Exponent bounds for incoming decimals. Values outside them are rejected
// before any rounding, which costs time proportional to the exponent.
const (
	minExponent = -10
	maxExponent = 10
)

// Rule describes how an expense is divided. It is one of EqualSplit,
// ExactSplit or PercentageSplit; the participant order of a rule decides who
// absorbs rounding residuals.
type Rule interface {
	Method() models.SplitMethod
	memberIDs() []string
}

// EqualSplit divides the total evenly among MemberIDs.
type EqualSplit struct {
	MemberIDs []string
}

// ExactShare is one participant's explicit amount.
type ExactShare struct {
	MemberID string
	Amount   decimal.Decimal
}

// ExactSplit assigns each participant an explicit amount.
type ExactSplit struct {
	Shares []ExactShare
}

// PercentShare is one participant's percentage of the total.
type PercentShare struct {
	MemberID string
	Percent  decimal.Decimal
}

// PercentageSplit assigns each participant a percentage of the total.
type PercentageSplit struct {
	Shares []PercentShare
}

func (EqualSplit) Method() models.SplitMethod      { return models.SplitEqual }
func (ExactSplit) Method() models.SplitMethod      { return models.SplitExact }
func (PercentageSplit) Method() models.SplitMethod { return models.SplitPercentage }

func (r EqualSplit) memberIDs() []string { return r.MemberIDs }

func (r ExactSplit) memberIDs() []string {
	ids := make([]string, len(r.Shares))
	for i, s := range r.Shares {
		ids[i] = s.MemberID
	}
	return ids
}

func (r PercentageSplit) memberIDs() []string {
	ids := make([]string, len(r.Shares))
	for i, s := range r.Shares {
		ids[i] = s.MemberID
	}
	return ids
}

// MemberIDs returns the participants of rule in input order.
func MemberIDs(rule Rule) []string {
	return rule.memberIDs()
}

// NewRule builds the Rule for method from loosely-typed request data.
// Only the input matching method is read.
func NewRule(method models.SplitMethod, memberIDs []string, exact []ExactShare, percents []PercentShare) (Rule, error) {
	switch method {
	case models.SplitEqual:
		return EqualSplit{MemberIDs: memberIDs}, nil
	case models.SplitExact:
		return ExactSplit{Shares: exact}, nil
	case models.SplitPercentage:
		return PercentageSplit{Shares: percents}, nil
	default:
		return nil, apperr.Validation("unknown split method %q", method)
	}
}

// Share is one participant's computed portion of an expense.
type Share struct {
	MemberID string
	Amount   decimal.Decimal
}

// Split computes each participant's share of total according to rule.
// Shares are returned in the rule's participant order.
//
// Equal and percentage splits round each share to cents with banker's
// rounding and give the leftover to the first participant, so the shares sum
// exactly to total. Exact splits must sum to total within one cent.
func Split(total decimal.Decimal, rule Rule) ([]Share, error) {
	if rule == nil {
		return nil, apperr.Validation("split rule is required")
	}
	if !total.IsPositive() {
		return nil, apperr.Validation("amount must be positive")
	}
	if err := CheckAmount("amount", total); err != nil {
		return nil, err
	}
	if !isCents(total) {
		return nil, apperr.Validation("amount %s has more than two decimal places", total)
	}
	if err := validateMembers(rule.memberIDs()); err != nil {
		return nil, err
	}

	switch r := rule.(type) {
	case EqualSplit:
		return splitEqually(total, r.MemberIDs), nil
	case ExactSplit:
		return splitExact(total, r.Shares)
	case PercentageSplit:
		return splitByPercent(total, r.Shares)
	default:
		return nil, apperr.Validation("unknown split method %q", rule.Method())
	}
}

func validateMembers(ids []string) error {
	if len(ids) == 0 {
		return apperr.Validation("at least one participant is required")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return apperr.Validation("participant id must not be empty")
		}
		if seen[id] {
			return apperr.Validation("participant %s is listed more than once", id)
		}
		seen[id] = true
	}
	return nil
}

func splitEqually(total decimal.Decimal, ids []string) []Share {
	each := total.Div(decimal.NewFromInt(int64(len(ids)))).RoundBank(2)
	shares := make([]Share, len(ids))
	for i, id := range ids {
		shares[i] = Share{MemberID: id, Amount: each}
	}
	assignResidual(total, shares)
	return shares
}

func splitExact(total decimal.Decimal, input []ExactShare) ([]Share, error) {
	shares := make([]Share, len(input))
	sum := decimal.Zero
	for i, s := range input {
		if s.Amount.IsNegative() {
			return nil, apperr.Validation("amount for %s must not be negative", s.MemberID)
		}
		if err := CheckAmount("amount for "+s.MemberID, s.Amount); err != nil {
			return nil, err
		}
		if !isCents(s.Amount) {
			return nil, apperr.Validation("amount %s for %s has more than two decimal places", s.Amount, s.MemberID)
		}
		shares[i] = Share{MemberID: s.MemberID, Amount: s.Amount}
		sum = sum.Add(s.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(cent) {
		return nil, apperr.Validation("exact amounts sum to %s, expected %s", sum.StringFixed(2), total.StringFixed(2))
	}
	return shares, nil
}

func splitByPercent(total decimal.Decimal, input []PercentShare) ([]Share, error) {
	sum := decimal.Zero
	for _, s := range input {
		if s.Percent.IsNegative() {
			return nil, apperr.Validation("percentage for %s must not be negative", s.MemberID)
		}
		if !inRange(s.Percent) || s.Percent.GreaterThan(hundred) {
			return nil, apperr.Validation("percentage for %s must be between 0 and 100", s.MemberID)
		}
		sum = sum.Add(s.Percent)
	}
	if sum.Sub(hundred).Abs().GreaterThan(cent) {
		return nil, apperr.Validation("percentages sum to %s%%, expected 100%%", sum.String())
	}

	shares := make([]Share, len(input))
	for i, s := range input {
		shares[i] = Share{
			MemberID: s.MemberID,
			Amount:   total.Mul(s.Percent).Div(hundred).RoundBank(2),
		}
	}
	assignResidual(total, shares)
	return shares, nil
}

// assignResidual moves total minus the rounded shares onto the first
// participant. A negative residual goes to the first participant whose share
// can absorb it without turning negative, or is spread in order when none can.
func assignResidual(total decimal.Decimal, shares []Share) {
	residual := total.Sub(Sum(shares))
	if residual.IsZero() {
		return
	}
	for i := range shares {
		adjusted := shares[i].Amount.Add(residual)
		if !adjusted.IsNegative() {
			shares[i].Amount = adjusted
			return
		}
	}
	for i := range shares {
		if !residual.IsNegative() {
			return
		}
		take := decimal.Min(shares[i].Amount, residual.Neg())
		shares[i].Amount = shares[i].Amount.Sub(take)
		residual = residual.Add(take)
	}
}

// Sum adds up share amounts.
func Sum(shares []Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// CheckAmount rejects money values that cannot be stored: absurd exponents
// and magnitudes above MaxAmount. It does not check sign or precision.
func CheckAmount(field string, d decimal.Decimal) error {
	if !inRange(d) || d.Abs().GreaterThan(MaxAmount) {
		return apperr.Validation("%s must not exceed %s", field, MaxAmount.StringFixed(2))
	}
	return nil
}

func inRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= minExponent && exp <= maxExponent
}

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
