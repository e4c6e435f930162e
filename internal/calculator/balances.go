package calculator

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// MemberBalance represents the outstanding position of one group member.
type MemberBalance struct {
	MemberID string

	// Net is positive when the member is owed money, negative when they owe.
	Net decimal.Decimal

	// OwedToMember is the sum of unpaid shares other members owe this member as payer.
	OwedToMember decimal.Decimal

	// OwedByMember is the sum of unpaid shares this member owes other payers.
	OwedByMember decimal.Decimal

	// OpenShares counts this member's unpaid participations in expenses paid by someone else.
	OpenShares int
}

// CalculateMemberBalances folds the unpaid participations of expenses into one
// balance per member, sorted by member ID.
//
// Algorithm:
//   - For each unpaid participation: the participant is debited the share and
//     the payer is credited the same share
//   - A payer's own share cancels out and is not counted as a debt
//   - Every ID in memberIDs appears in the result, zero if uninvolved; members
//     only referenced by expenses (e.g. who left the group) appear as well
//
// Because every share is credited and debited once, the nets always sum to zero.
func CalculateMemberBalances(memberIDs []string, expenses []models.Expense) []MemberBalance {
	balances := make(map[string]*MemberBalance, len(memberIDs))
	get := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{MemberID: id}
			balances[id] = b
		}
		return b
	}

	for _, id := range memberIDs {
		get(id)
	}

	for _, e := range expenses {
		for _, p := range e.Participations {
			if p.Paid {
				continue
			}
			payer := get(e.PayerID)
			participant := get(p.MemberID)
			if p.MemberID == e.PayerID {
				continue
			}
			payer.Net = payer.Net.Add(p.Share)
			payer.OwedToMember = payer.OwedToMember.Add(p.Share)
			participant.Net = participant.Net.Sub(p.Share)
			participant.OwedByMember = participant.OwedByMember.Add(p.Share)
			participant.OpenShares++
		}
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		result = append(result, *b)
	}
	slices.SortFunc(result, func(a, b MemberBalance) int {
		return strings.Compare(a.MemberID, b.MemberID)
	})
	return result
}

// NetBalances returns the signed net amount per member.
// See CalculateMemberBalances for the folding rules.
func NetBalances(memberIDs []string, expenses []models.Expense) map[string]decimal.Decimal {
	detailed := CalculateMemberBalances(memberIDs, expenses)
	nets := make(map[string]decimal.Decimal, len(detailed))
	for _, b := range detailed {
		nets[b.MemberID] = b.Net
	}
	return nets
}
