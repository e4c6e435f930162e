package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/calculator"
)

// ComputeGroupBalances returns the signed net balance of every member of the
// group: positive when owed money, negative when owing. Nothing is cached;
// every call folds the stored participations again.
func (l *Ledger) ComputeGroupBalances(ctx context.Context, groupID string) (map[string]decimal.Decimal, error) {
	balances, err := l.MemberBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	nets := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		nets[b.MemberID] = b.Net
	}
	return nets, nil
}

// MemberBalances returns the detailed balance of every member, sorted by member ID.
func (l *Ledger) MemberBalances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	group, err := l.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := l.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	return calculator.CalculateMemberBalances(group.ActiveMemberIDs(), expenses), nil
}

// HasOpenBalance reports whether memberID owes or is owed anything in the group.
func (l *Ledger) HasOpenBalance(ctx context.Context, groupID, memberID string) (bool, error) {
	balances, err := l.MemberBalances(ctx, groupID)
	if err != nil {
		return false, err
	}
	for _, b := range balances {
		if b.MemberID == memberID {
			return !b.OwedByMember.IsZero() || !b.OwedToMember.IsZero(), nil
		}
	}
	return false, nil
}

// Candidates returns the members owing at least minimum, largest debtor first.
func (l *Ledger) Candidates(ctx context.Context, groupID string, minimum decimal.Decimal) ([]calculator.Candidate, error) {
	if minimum.IsNegative() {
		return nil, apperr.Validation("minimum amount must not be negative")
	}
	balances, err := l.ComputeGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SelectCandidates(balances, minimum), nil
}

// Statistics summarises a group's expenses dated within [from, to].
func (l *Ledger) Statistics(ctx context.Context, groupID string, from, to int64) (calculator.Statistics, error) {
	if from > to {
		return calculator.Statistics{}, apperr.Validation("start date must not be after end date")
	}
	if _, err := l.Group(ctx, groupID); err != nil {
		return calculator.Statistics{}, err
	}
	expenses, err := l.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return calculator.Statistics{}, fmt.Errorf("failed to load expenses: %w", err)
	}
	return calculator.CalculateStatistics(expenses, from, to), nil
}
