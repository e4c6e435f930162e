package service

import (
	"bytes"
	"context"
	"math"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	pb "github.com/mmynk/settleup/pkg/api"
)

func shares(e *pb.Expense) map[string]string {
	out := make(map[string]string)
	for _, p := range e.Participations {
		out[p.MemberId] = p.Share
	}
	return out
}

func TestCreateExpenseEqualSplit(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	carol := ts.register(t, "Carol", "carol@example.com")
	group := ts.createGroup(t, alice, "Home", bob, carol)

	expense := ts.addEqualExpense(t, alice, group.Id, alice, "100.00", alice, bob, carol)

	assert.Equal(t, "100.00", expense.Amount)
	assert.Equal(t, "equal", expense.SplitMethod)
	assert.Equal(t, "Alice", expense.PayerName)
	assert.Equal(t, map[string]string{
		alice.userID: "33.34",
		bob.userID:   "33.33",
		carol.userID: "33.33",
	}, shares(expense))
}

func TestCreateExpenseDefaultsToAllMembers(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	group := ts.createGroup(t, alice, "Home", bob)

	resp, err := ts.expenses.CreateExpense(context.Background(), withToken(bob, &pb.CreateExpenseRequest{
		GroupId:        group.Id,
		ExpenseDetails: pb.ExpenseDetails{Title: "Pizza", Amount: "24.50"},
	}))
	require.NoError(t, err)

	expense := resp.Msg.Expense
	assert.Equal(t, bob.userID, expense.PayerId, "payer defaults to the caller")
	assert.Equal(t, "general", expense.Category)
	assert.Equal(t, map[string]string{alice.userID: "12.25", bob.userID: "12.25"}, shares(expense))
}

func TestCreateExpenseExactAndPercentage(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	group := ts.createGroup(t, alice, "Home", bob)

	exact, err := ts.expenses.CreateExpense(ctx, withToken(alice, &pb.CreateExpenseRequest{
		GroupId: group.Id,
		ExpenseDetails: pb.ExpenseDetails{
			Title:       "Groceries",
			Amount:      "50.00",
			Category:    "food",
			SplitMethod: "exact",
			ExactShares: []*pb.ExactShare{
				{MemberId: alice.userID, Amount: "20.00"},
				{MemberId: bob.userID, Amount: "30.00"},
			},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{alice.userID: "20.00", bob.userID: "30.00"}, shares(exact.Msg.Expense))

	percent, err := ts.expenses.CreateExpense(ctx, withToken(alice, &pb.CreateExpenseRequest{
		GroupId: group.Id,
		ExpenseDetails: pb.ExpenseDetails{
			Title:       "Rent",
			Amount:      "1000.00",
			SplitMethod: "percentage",
			Percentages: []*pb.PercentShare{
				{MemberId: alice.userID, Percent: "60"},
				{MemberId: bob.userID, Percent: "40"},
			},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{alice.userID: "600.00", bob.userID: "400.00"}, shares(percent.Msg.Expense))
}

func TestCreateExpenseValidation(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	eve := ts.register(t, "Eve", "eve@example.com")
	group := ts.createGroup(t, alice, "Home", bob)

	tests := []struct {
		name    string
		details pb.ExpenseDetails
	}{
		{"zero amount", pb.ExpenseDetails{Title: "Zero", Amount: "0"}},
		{"not a number", pb.ExpenseDetails{Title: "Bad", Amount: "ten"}},
		{"amount above maximum", pb.ExpenseDetails{Title: "Big", Amount: "100000000"}},
		{"amount with huge exponent", pb.ExpenseDetails{Title: "Big", Amount: "1e9999"}},
		{"exact share with huge exponent", pb.ExpenseDetails{
			Title: "X", Amount: "10.00", SplitMethod: "exact",
			ExactShares: []*pb.ExactShare{{MemberId: alice.userID, Amount: "1e20000000"}, {MemberId: bob.userID, Amount: "10.00"}},
		}},
		{"huge percentage", pb.ExpenseDetails{
			Title: "X", Amount: "10.00", SplitMethod: "percentage",
			Percentages: []*pb.PercentShare{{MemberId: alice.userID, Percent: "1e9999"}, {MemberId: bob.userID, Percent: "100"}},
		}},
		{"missing title", pb.ExpenseDetails{Amount: "10.00"}},
		{"unknown method", pb.ExpenseDetails{Title: "X", Amount: "10.00", SplitMethod: "shares"}},
		{"exact mismatch", pb.ExpenseDetails{
			Title: "X", Amount: "10.00", SplitMethod: "exact",
			ExactShares: []*pb.ExactShare{{MemberId: alice.userID, Amount: "4.00"}, {MemberId: bob.userID, Amount: "5.00"}},
		}},
		{"percent mismatch", pb.ExpenseDetails{
			Title: "X", Amount: "10.00", SplitMethod: "percentage",
			Percentages: []*pb.PercentShare{{MemberId: alice.userID, Percent: "50"}, {MemberId: bob.userID, Percent: "40"}},
		}},
		{"non-member participant", pb.ExpenseDetails{
			Title: "X", Amount: "10.00", ParticipantIds: []string{alice.userID, eve.userID},
		}},
		{"non-member payer", pb.ExpenseDetails{Title: "X", Amount: "10.00", PayerId: eve.userID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.expenses.CreateExpense(context.Background(), withToken(alice, &pb.CreateExpenseRequest{
				GroupId:        group.Id,
				ExpenseDetails: tt.details,
			}))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestCreateExpenseRequiresMembership(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	eve := ts.register(t, "Eve", "eve@example.com")
	group := ts.createGroup(t, alice, "Home")

	_, err := ts.expenses.CreateExpense(context.Background(), withToken(eve, &pb.CreateExpenseRequest{
		GroupId:        group.Id,
		ExpenseDetails: pb.ExpenseDetails{Title: "Sneaky", Amount: "10.00"},
	}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestListExpensesPagination(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	group := ts.createGroup(t, alice, "Home", bob)

	for range 5 {
		ts.addEqualExpense(t, alice, group.Id, alice, "10.00", alice, bob)
	}

	resp, err := ts.expenses.ListExpenses(ctx, withToken(bob, &pb.ListExpensesRequest{GroupId: group.Id, Page: 2, PerPage: 2}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Expenses, 2)
	assert.EqualValues(t, 5, resp.Msg.Total)
	assert.EqualValues(t, 2, resp.Msg.Page)
	assert.EqualValues(t, 2, resp.Msg.PerPage)

	resp, err = ts.expenses.ListExpenses(ctx, withToken(bob, &pb.ListExpensesRequest{GroupId: group.Id, PerPage: 500}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Expenses, 5)
	assert.EqualValues(t, 1, resp.Msg.Page)
	assert.EqualValues(t, 100, resp.Msg.PerPage)

	resp, err = ts.expenses.ListExpenses(ctx, withToken(bob, &pb.ListExpensesRequest{GroupId: group.Id, Page: math.MaxInt32, PerPage: 2}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Expenses)
	assert.EqualValues(t, 5, resp.Msg.Total)
}

func TestUpdateExpense(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	carol := ts.register(t, "Carol", "carol@example.com")
	group := ts.createGroup(t, alice, "Home", bob, carol)
	expense := ts.addEqualExpense(t, bob, group.Id, bob, "30.00", bob, carol)

	// Carol neither created it nor administers the group.
	_, err := ts.expenses.UpdateExpense(ctx, withToken(carol, &pb.UpdateExpenseRequest{
		ExpenseId:      expense.Id,
		ExpenseDetails: pb.ExpenseDetails{Title: "Mine now", Amount: "1.00"},
	}))
	requireCode(t, err, connect.CodePermissionDenied)

	// The admin may edit anyone's expense.
	resp, err := ts.expenses.UpdateExpense(ctx, withToken(alice, &pb.UpdateExpenseRequest{
		ExpenseId: expense.Id,
		ExpenseDetails: pb.ExpenseDetails{
			Title:          "Dinner",
			Amount:         "45.00",
			ParticipantIds: []string{alice.userID, bob.userID, carol.userID},
		},
	}))
	require.NoError(t, err)
	updated := resp.Msg.Expense
	assert.Equal(t, "Dinner", updated.Title)
	assert.Equal(t, bob.userID, updated.PayerId, "payer is kept when not given")
	assert.Equal(t, map[string]string{
		alice.userID: "15.00",
		bob.userID:   "15.00",
		carol.userID: "15.00",
	}, shares(updated))
}

func TestDeleteExpense(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	group := ts.createGroup(t, alice, "Home", bob)
	expense := ts.addEqualExpense(t, bob, group.Id, bob, "20.00", alice, bob)

	_, err := ts.expenses.DeleteExpense(ctx, withToken(bob, &pb.DeleteExpenseRequest{ExpenseId: expense.Id}))
	require.NoError(t, err)

	_, err = ts.expenses.GetExpense(ctx, withToken(bob, &pb.GetExpenseRequest{ExpenseId: expense.Id}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestSettleParticipation(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	carol := ts.register(t, "Carol", "carol@example.com")
	group := ts.createGroup(t, alice, "Home", bob, carol)
	expense := ts.addEqualExpense(t, alice, group.Id, alice, "60.00", alice, bob, carol)

	bobShare := participationFor(t, expense, bob.userID)

	// Carol is neither the participant, the payer nor an admin.
	_, err := ts.expenses.SettleParticipation(ctx, withToken(carol, &pb.SettleParticipationRequest{ParticipationId: bobShare.Id}))
	requireCode(t, err, connect.CodePermissionDenied)

	resp, err := ts.expenses.SettleParticipation(ctx, withToken(bob, &pb.SettleParticipationRequest{
		ParticipationId: bobShare.Id,
		Method:          "online",
		Note:            "venmo",
	}))
	require.NoError(t, err)

	settled := participationFor(t, resp.Msg.Expense, bob.userID)
	assert.True(t, settled.Paid)
	assert.Equal(t, "online", settled.Method)
	assert.Positive(t, settled.SettledAt)

	st := resp.Msg.Settlement
	assert.Equal(t, bob.userID, st.FromUserId)
	assert.Equal(t, alice.userID, st.ToUserId)
	assert.Equal(t, "20.00", st.Amount)
	assert.Equal(t, "venmo", st.Note)

	// Bob is told his payment was recorded.
	msgs := ts.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, bob.phone, msgs[0].phone)

	// Settling twice is rejected.
	_, err = ts.expenses.SettleParticipation(ctx, withToken(bob, &pb.SettleParticipationRequest{ParticipationId: bobShare.Id}))
	requireCode(t, err, connect.CodeFailedPrecondition)

	// The settled expense is now frozen.
	_, err = ts.expenses.UpdateExpense(ctx, withToken(alice, &pb.UpdateExpenseRequest{
		ExpenseId:      expense.Id,
		ExpenseDetails: pb.ExpenseDetails{Title: "Changed", Amount: "90.00"},
	}))
	requireCode(t, err, connect.CodeFailedPrecondition)
	_, err = ts.expenses.DeleteExpense(ctx, withToken(alice, &pb.DeleteExpenseRequest{ExpenseId: expense.Id}))
	requireCode(t, err, connect.CodeFailedPrecondition)

	balances, err := ts.groups.GetGroupBalances(ctx, withToken(alice, &pb.GetGroupBalancesRequest{GroupId: group.Id}))
	require.NoError(t, err)
	for _, b := range balances.Msg.Balances {
		switch b.MemberId {
		case alice.userID:
			assert.Equal(t, "20.00", b.Net)
		case bob.userID:
			assert.Equal(t, "0.00", b.Net)
		case carol.userID:
			assert.Equal(t, "-20.00", b.Net)
		}
	}

	list, err := ts.expenses.ListSettlements(ctx, withToken(carol, &pb.ListSettlementsRequest{GroupId: group.Id}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Settlements, 1)
	assert.Equal(t, st.Id, list.Msg.Settlements[0].Id)
}

func TestSettleParticipationUnknownMethod(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	group := ts.createGroup(t, alice, "Home", bob)
	expense := ts.addEqualExpense(t, alice, group.Id, alice, "10.00", alice, bob)

	_, err := ts.expenses.SettleParticipation(context.Background(), withToken(bob, &pb.SettleParticipationRequest{
		ParticipationId: participationFor(t, expense, bob.userID).Id,
		Method:          "barter",
	}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestExportExpenses(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "Alice", "alice@example.com")
	bob := ts.register(t, "Bob", "bob@example.com")
	group := ts.createGroup(t, alice, "Home", bob)
	ts.addEqualExpense(t, alice, group.Id, alice, "40.00", alice, bob)

	resp, err := ts.expenses.ExportExpenses(context.Background(), withToken(bob, &pb.ExportExpensesRequest{GroupId: group.Id}))
	require.NoError(t, err)
	assert.Contains(t, resp.Msg.Filename, "expenses_"+group.Id[:8])
	assert.NotEmpty(t, resp.Msg.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(resp.Msg.Data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Expenses", "Shares", "Balances"}, f.GetSheetList())
}
