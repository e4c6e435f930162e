package calculator

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// topPayerLimit caps the number of payers reported in Statistics.
const topPayerLimit = 5

// CategoryTotal aggregates expenses of one category.
type CategoryTotal struct {
	Category string
	Count    int
	Amount   decimal.Decimal
}

// PayerTotal aggregates expenses paid by one member.
type PayerTotal struct {
	MemberID string
	Count    int
	Amount   decimal.Decimal
}

// Statistics summarises a group's expenses over a period.
type Statistics struct {
	From, To   int64
	Count      int
	Total      decimal.Decimal
	Average    decimal.Decimal
	Largest    decimal.Decimal
	Smallest   decimal.Decimal
	Categories []CategoryTotal
	TopPayers  []PayerTotal
}

// CalculateStatistics summarises the expenses dated within [from, to].
// Categories are ordered by amount descending, payers likewise and capped
// at five.
func CalculateStatistics(expenses []models.Expense, from, to int64) Statistics {
	stats := Statistics{From: from, To: to}
	categories := make(map[string]*CategoryTotal)
	payers := make(map[string]*PayerTotal)

	for _, e := range expenses {
		if e.ExpenseDate < from || e.ExpenseDate > to {
			continue
		}
		if stats.Count == 0 || e.Amount.GreaterThan(stats.Largest) {
			stats.Largest = e.Amount
		}
		if stats.Count == 0 || e.Amount.LessThan(stats.Smallest) {
			stats.Smallest = e.Amount
		}
		stats.Count++
		stats.Total = stats.Total.Add(e.Amount)

		c, ok := categories[e.Category]
		if !ok {
			c = &CategoryTotal{Category: e.Category}
			categories[e.Category] = c
		}
		c.Count++
		c.Amount = c.Amount.Add(e.Amount)

		p, ok := payers[e.PayerID]
		if !ok {
			p = &PayerTotal{MemberID: e.PayerID}
			payers[e.PayerID] = p
		}
		p.Count++
		p.Amount = p.Amount.Add(e.Amount)
	}

	if stats.Count > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Count))).RoundBank(2)
	}

	for _, c := range categories {
		stats.Categories = append(stats.Categories, *c)
	}
	slices.SortFunc(stats.Categories, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})

	for _, p := range payers {
		stats.TopPayers = append(stats.TopPayers, *p)
	}
	slices.SortFunc(stats.TopPayers, func(a, b PayerTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.MemberID, b.MemberID)
	})
	if len(stats.TopPayers) > topPayerLimit {
		stats.TopPayers = stats.TopPayers[:topPayerLimit]
	}

	return stats
}
