package calculator

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amounts(shares []Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.MemberID + "=" + s.Amount.StringFixed(2)
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total string
		rule  Rule
		want  []string
	}{
		{
			name:  "equal split gives residual cent to first participant",
			total: "100",
			rule:  EqualSplit{MemberIDs: []string{"A", "B", "C"}},
			want:  []string{"A=33.34", "B=33.33", "C=33.33"},
		},
		{
			name:  "equal split without residual",
			total: "10",
			rule:  EqualSplit{MemberIDs: []string{"A", "B", "C", "D"}},
			want:  []string{"A=2.50", "B=2.50", "C=2.50", "D=2.50"},
		},
		{
			name:  "equal split rounds half to even",
			total: "0.05",
			rule:  EqualSplit{MemberIDs: []string{"A", "B"}},
			want:  []string{"A=0.03", "B=0.02"},
		},
		{
			name:  "single participant owes everything",
			total: "42.17",
			rule:  EqualSplit{MemberIDs: []string{"A"}},
			want:  []string{"A=42.17"},
		},
		{
			name:  "exact amounts are kept as given",
			total: "60",
			rule: ExactSplit{Shares: []ExactShare{
				{MemberID: "A", Amount: d("10")},
				{MemberID: "B", Amount: d("20.50")},
				{MemberID: "C", Amount: d("29.50")},
			}},
			want: []string{"A=10.00", "B=20.50", "C=29.50"},
		},
		{
			name:  "exact amounts within one cent are accepted",
			total: "100",
			rule: ExactSplit{Shares: []ExactShare{
				{MemberID: "A", Amount: d("33.33")},
				{MemberID: "B", Amount: d("33.33")},
				{MemberID: "C", Amount: d("33.33")},
			}},
			want: []string{"A=33.33", "B=33.33", "C=33.33"},
		},
		{
			name:  "percentage split corrects rounding on first participant",
			total: "99.99",
			rule: PercentageSplit{Shares: []PercentShare{
				{MemberID: "A", Percent: d("50")},
				{MemberID: "B", Percent: d("30")},
				{MemberID: "C", Percent: d("20")},
			}},
			want: []string{"A=49.99", "B=30.00", "C=20.00"},
		},
		{
			name:  "percentage split with fractional percentages",
			total: "100",
			rule: PercentageSplit{Shares: []PercentShare{
				{MemberID: "A", Percent: d("33.33")},
				{MemberID: "B", Percent: d("33.33")},
				{MemberID: "C", Percent: d("33.34")},
			}},
			want: []string{"A=33.33", "B=33.33", "C=33.34"},
		},
		{
			name:  "percentages within tolerance are accepted",
			total: "200",
			rule: PercentageSplit{Shares: []PercentShare{
				{MemberID: "A", Percent: d("49.995")},
				{MemberID: "B", Percent: d("50")},
			}},
			want: []string{"A=100.00", "B=100.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Split(d(tt.total), tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts(shares))
		})
	}
}

func TestSplit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		total string
		rule  Rule
	}{
		{"nil rule", "10", nil},
		{"zero amount", "0", EqualSplit{MemberIDs: []string{"A"}}},
		{"negative amount", "-5", EqualSplit{MemberIDs: []string{"A"}}},
		{"sub-cent amount", "10.005", EqualSplit{MemberIDs: []string{"A"}}},
		{"no participants", "10", EqualSplit{}},
		{"empty participant id", "10", EqualSplit{MemberIDs: []string{"A", ""}}},
		{"duplicate participant", "10", EqualSplit{MemberIDs: []string{"A", "B", "A"}}},
		{"exact amounts do not sum to total", "100", ExactSplit{Shares: []ExactShare{
			{MemberID: "A", Amount: d("50")},
			{MemberID: "B", Amount: d("40")},
		}}},
		{"exact amount negative", "10", ExactSplit{Shares: []ExactShare{
			{MemberID: "A", Amount: d("15")},
			{MemberID: "B", Amount: d("-5")},
		}}},
		{"exact amount with sub-cent precision", "10", ExactSplit{Shares: []ExactShare{
			{MemberID: "A", Amount: d("5.005")},
			{MemberID: "B", Amount: d("4.995")},
		}}},
		{"percentages do not sum to 100", "10", PercentageSplit{Shares: []PercentShare{
			{MemberID: "A", Percent: d("60")},
			{MemberID: "B", Percent: d("39")},
		}}},
		{"negative percentage", "10", PercentageSplit{Shares: []PercentShare{
			{MemberID: "A", Percent: d("110")},
			{MemberID: "B", Percent: d("-10")},
		}}},
		{"amount above maximum", "100000000", EqualSplit{MemberIDs: []string{"A"}}},
		{"amount with huge exponent", "1e9999", EqualSplit{MemberIDs: []string{"A", "B", "C"}}},
		{"amount with tiny exponent", "1e-9999", EqualSplit{MemberIDs: []string{"A"}}},
		{"exact amount with huge exponent", "10", ExactSplit{Shares: []ExactShare{
			{MemberID: "A", Amount: d("1e20000000")},
			{MemberID: "B", Amount: d("10")},
		}}},
		{"percentage with huge exponent", "10", PercentageSplit{Shares: []PercentShare{
			{MemberID: "A", Percent: d("1e9999")},
			{MemberID: "B", Percent: d("100")},
		}}},
		{"percentage above 100", "10", PercentageSplit{Shares: []PercentShare{
			{MemberID: "A", Percent: d("150")},
			{MemberID: "B", Percent: d("0")},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(d(tt.total), tt.rule)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "want ValidationError, got %T", err)
		})
	}
}

func TestSplit_MaximumAmount(t *testing.T) {
	shares, err := Split(MaxAmount, EqualSplit{MemberIDs: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A=49999999.99", "B=50000000.00"}, amounts(shares))
}

func TestCheckAmount(t *testing.T) {
	for _, v := range []string{"0", "99999999.99", "-99999999.99", "1.5", "1e7"} {
		assert.NoError(t, CheckAmount("amount", d(v)), v)
	}
	for _, v := range []string{"100000000", "-100000000", "1e11", "1e20000000", "1e-20000000"} {
		err := CheckAmount("amount", d(v))
		require.Error(t, err, v)
		assert.True(t, apperr.IsValidation(err), v)
	}
}

func TestNewRule(t *testing.T) {
	rule, err := NewRule(models.SplitEqual, []string{"A", "B"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SplitEqual, rule.Method())
	assert.Equal(t, []string{"A", "B"}, MemberIDs(rule))

	rule, err = NewRule(models.SplitPercentage, nil, nil, []PercentShare{{MemberID: "B", Percent: d("100")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, MemberIDs(rule))

	_, err = NewRule(models.SplitMethod("shares"), []string{"A"}, nil, nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestSplit_EqualSumsExactly(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		total := decimal.New(rng.Int64N(1_000_000)+1, -2)
		n := rng.IntN(12) + 1
		ids := make([]string, n)
		for j := range ids {
			ids[j] = fmt.Sprintf("m%02d", j)
		}

		shares, err := Split(total, EqualSplit{MemberIDs: ids})
		require.NoError(t, err)
		require.Len(t, shares, n)
		require.True(t, Sum(shares).Equal(total), "total=%s shares=%v", total, amounts(shares))
		for _, s := range shares {
			require.False(t, s.Amount.IsNegative())
		}
	}
}

func TestSplit_PercentageSumsExactly(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 2000; i++ {
		total := decimal.New(rng.Int64N(1_000_000)+1, -2)
		n := rng.IntN(8) + 1

		// Draw basis points that add up to exactly 100%.
		remaining := int64(10_000)
		shares := make([]PercentShare, n)
		for j := range shares {
			bp := remaining
			if j < n-1 {
				bp = rng.Int64N(remaining + 1)
			}
			remaining -= bp
			shares[j] = PercentShare{MemberID: fmt.Sprintf("m%02d", j), Percent: decimal.New(bp, -2)}
		}

		got, err := Split(total, PercentageSplit{Shares: shares})
		require.NoError(t, err)
		require.True(t, Sum(got).Equal(total), "total=%s shares=%v", total, amounts(got))
		for _, s := range got {
			require.False(t, s.Amount.IsNegative(), "total=%s shares=%v", total, amounts(got))
		}
	}
}
