package calculator

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Candidate is a member eligible for a payment reminder.
type Candidate struct {
	MemberID   string
	AmountOwed decimal.Decimal
}

// SelectCandidates returns the members whose net balance is negative and
// owes at least minimum, largest debtor first. Ties are ordered by member ID.
func SelectCandidates(balances map[string]decimal.Decimal, minimum decimal.Decimal) []Candidate {
	var candidates []Candidate
	for id, net := range balances {
		if !net.IsNegative() {
			continue
		}
		owed := net.Neg()
		if owed.LessThan(minimum) {
			continue
		}
		candidates = append(candidates, Candidate{MemberID: id, AmountOwed: owed})
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := b.AmountOwed.Cmp(a.AmountOwed); c != 0 {
			return c
		}
		return strings.Compare(a.MemberID, b.MemberID)
	})
	return candidates
}

// TotalOwed sums the amounts owed by candidates.
func TotalOwed(candidates []Candidate) decimal.Decimal {
	total := decimal.Zero
	for _, c := range candidates {
		total = total.Add(c.AmountOwed)
	}
	return total
}
