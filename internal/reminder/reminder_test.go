package reminder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

type sentMessage struct {
	phone, body string
}

// fakeSender records messages and fails for the configured phone numbers.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

func (s *fakeSender) Send(ctx context.Context, phone, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[phone] {
		return "", apperr.Dependency(errors.New("carrier rejected"), "failed to send SMS")
	}
	s.sent = append(s.sent, sentMessage{phone: phone, body: body})
	return fmt.Sprintf("SM%03d", len(s.sent)), nil
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type fixture struct {
	store      *sqlite.SQLiteStore
	ledger     *ledger.Ledger
	sender     *fakeSender
	dispatcher *Dispatcher
	group      *models.Group
	users      []*models.User
	now        time.Time
}

// setup creates a group of four members where the first paid 100 split equally,
// so members 1-3 each owe 25.
func setup(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	f := &fixture{
		store:  store,
		ledger: ledger.New(store),
		sender: &fakeSender{failFor: map[string]bool{}},
		now:    time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.dispatcher = NewDispatcher(f.ledger, store, f.sender, WithConcurrency(2))
	f.dispatcher.now = func() time.Time { return f.now }

	for i, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		u := models.NewUser(strings.ToLower(name)+"@example.com", fmt.Sprintf("+1555000000%d", i), name, "hash")
		require.NoError(t, store.CreateUser(ctx, u))
		f.users = append(f.users, u)
	}

	f.group = &models.Group{ID: uuid.New().String(), Name: "Cabin", CreatedBy: f.users[0].ID, Active: true}
	ids := make([]string, len(f.users))
	for i, u := range f.users {
		ids[i] = u.ID
		f.group.Members = append(f.group.Members, models.Membership{
			GroupID: f.group.ID, UserID: u.ID, Role: models.RoleMember, Active: true, JoinedAt: int64(i),
		})
	}
	f.group.Members[0].Role = models.RoleAdmin
	require.NoError(t, store.CreateGroup(ctx, f.group))

	_, err = f.ledger.CreateExpense(ctx, f.users[0].ID, ledger.ExpenseInput{
		GroupID: f.group.ID,
		Title:   "Rent",
		Amount:  decimal.NewFromInt(100),
		PayerID: f.users[0].ID,
		Rule:    calculator.EqualSplit{MemberIDs: ids},
	})
	require.NoError(t, err)
	return f
}

func TestReminderMessage(t *testing.T) {
	data := MessageData{MemberName: "Bob", GroupName: "Cabin", SenderName: "Alice", Amount: decimal.RequireFromString("25")}

	friendly := ReminderMessage(models.MessageFriendly, "", data)
	assert.Contains(t, friendly, "Friendly reminder")
	assert.Contains(t, friendly, "$25.00")
	assert.Contains(t, friendly, "- Alice")

	assert.Contains(t, ReminderMessage(models.MessageUrgent, "", data), "settle this amount soon")
	assert.True(t, strings.HasPrefix(ReminderMessage(models.MessageFinal, "", data), "FINAL NOTICE: Bob"))
	assert.Equal(t, "pay up", ReminderMessage(models.MessageFinal, "  pay up ", data))

	long := ReminderMessage(models.MessageFriendly, strings.Repeat("x", 400), data)
	assert.Len(t, long, 320)
	assert.True(t, strings.HasSuffix(long, "..."))

	exact := strings.Repeat("y", 320)
	assert.Equal(t, exact, ReminderMessage(models.MessageFriendly, exact, data))

	confirm := SettlementMessage("Bob", "Alice", "Cabin", decimal.RequireFromString("25"))
	assert.Contains(t, confirm, "Your payment of $25.00 to Alice")
}

func TestSendOne(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice, bob := f.users[0], f.users[1]

	result, err := f.dispatcher.SendOne(ctx, SendRequest{GroupID: f.group.ID, MemberID: bob.ID, SenderID: alice.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "25.00", result.Amount.StringFixed(2))
	require.Len(t, f.sender.messages(), 1)
	assert.Equal(t, bob.PhoneNumber, f.sender.messages()[0].phone)
	assert.Contains(t, f.sender.messages()[0].body, "Hi Bob!")

	t.Run("creditor cannot be reminded", func(t *testing.T) {
		_, err := f.dispatcher.SendOne(ctx, SendRequest{GroupID: f.group.ID, MemberID: alice.ID, SenderID: bob.ID})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := f.dispatcher.SendOne(ctx, SendRequest{GroupID: f.group.ID, MemberID: "stranger", SenderID: alice.ID})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("delivery failure is a dependency error and is logged", func(t *testing.T) {
		carol := f.users[2]
		f.sender.failFor[carol.PhoneNumber] = true
		t.Cleanup(func() { delete(f.sender.failFor, carol.PhoneNumber) })

		_, err := f.dispatcher.SendOne(ctx, SendRequest{GroupID: f.group.ID, MemberID: carol.ID, SenderID: alice.ID})
		assert.True(t, apperr.IsDependency(err))

		logs, err := f.dispatcher.History(ctx, f.group.ID)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		failures := 0
		for _, l := range logs {
			if !l.Success {
				failures++
				assert.Equal(t, carol.ID, l.MemberID)
				assert.Contains(t, l.Error, "carrier rejected")
			}
		}
		assert.Equal(t, 1, failures)
	})
}

func TestSendBulk(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice, carol := f.users[0], f.users[2]
	f.sender.failFor[carol.PhoneNumber] = true

	results, err := f.dispatcher.SendBulk(ctx, BulkRequest{
		GroupID:  f.group.ID,
		SenderID: alice.ID,
		Minimum:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byMember := map[string]Result{}
	for _, r := range results {
		byMember[r.MemberID] = r
	}
	assert.False(t, byMember[carol.ID].Success)
	assert.NotEmpty(t, byMember[carol.ID].Error)
	assert.True(t, byMember[f.users[1].ID].Success)
	assert.True(t, byMember[f.users[3].ID].Success)
	assert.Len(t, f.sender.messages(), 2)

	logs, err := f.dispatcher.History(ctx, f.group.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)

	t.Run("sender is never reminded", func(t *testing.T) {
		results, err := f.dispatcher.SendBulk(ctx, BulkRequest{GroupID: f.group.ID, SenderID: f.users[1].ID})
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, f.users[1].ID, r.MemberID)
		}
		assert.Len(t, results, 2)
	})

	t.Run("minimum above every debt", func(t *testing.T) {
		results, err := f.dispatcher.SendBulk(ctx, BulkRequest{GroupID: f.group.ID, SenderID: alice.ID, Minimum: decimal.NewFromInt(26)})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSchedule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice, bob := f.users[0], f.users[1]

	tests := []struct {
		name string
		req  ScheduleRequest
	}{
		{"send time in the past", ScheduleRequest{SendAt: f.now.Add(-time.Minute).Unix()}},
		{"neither time nor schedule", ScheduleRequest{}},
		{"both time and schedule", ScheduleRequest{SendAt: f.now.Add(time.Hour).Unix(), Cron: "0 9 * * *"}},
		{"invalid cron", ScheduleRequest{Cron: "every day"}},
		{"unknown message type", ScheduleRequest{SendAt: f.now.Add(time.Hour).Unix(), MessageType: "angry"}},
		{"non-member", ScheduleRequest{SendAt: f.now.Add(time.Hour).Unix(), MemberID: "stranger"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.GroupID = f.group.ID
			req.SenderID = alice.ID
			if req.MemberID == "" {
				req.MemberID = bob.ID
			}
			_, err := f.dispatcher.Schedule(ctx, req)
			assert.True(t, apperr.IsValidation(err), "want ValidationError, got %v", err)
		})
	}

	t.Run("cron schedule sets first run", func(t *testing.T) {
		r, err := f.dispatcher.Schedule(ctx, ScheduleRequest{
			GroupID: f.group.ID, MemberID: bob.ID, SenderID: alice.ID, Cron: "0 9 * * *",
		})
		require.NoError(t, err)
		assert.True(t, r.Recurring())
		assert.Equal(t, models.MessageFriendly, r.MessageType)
		assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).Unix(), r.NextRunAt)
	})
}

func TestDispatchDue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice, bob, carol, dave := f.users[0], f.users[1], f.users[2], f.users[3]

	schedule := func(member string, sendAt int64, expr string) *models.ScheduledReminder {
		r, err := f.dispatcher.Schedule(ctx, ScheduleRequest{
			GroupID: f.group.ID, MemberID: member, SenderID: alice.ID, SendAt: sendAt, Cron: expr,
			MessageType: models.MessageUrgent,
		})
		require.NoError(t, err)
		return r
	}

	oneShot := schedule(bob.ID, f.now.Add(time.Minute).Unix(), "")
	recurring := schedule(carol.ID, 0, "30 8 * * *")
	creditor := schedule(alice.ID, f.now.Add(time.Minute).Unix(), "")
	failing := schedule(dave.ID, f.now.Add(time.Minute).Unix(), "")
	notYet := schedule(bob.ID, f.now.Add(48*time.Hour).Unix(), "")
	f.sender.failFor[dave.PhoneNumber] = true

	runAt := f.now.Add(time.Hour)
	summary, err := f.dispatcher.DispatchDue(ctx, runAt)
	require.NoError(t, err)
	assert.Equal(t, DispatchSummary{Due: 4, Sent: 2, Failed: 1, Skipped: 1}, summary)

	status := func(id string) *models.ScheduledReminder {
		r, err := f.dispatcher.GetScheduled(ctx, id)
		require.NoError(t, err)
		return r
	}
	assert.Equal(t, models.ReminderSent, status(oneShot.ID).Status)
	assert.Equal(t, models.ReminderCancelled, status(creditor.ID).Status)
	assert.Equal(t, models.ReminderFailed, status(failing.ID).Status)
	assert.NotEmpty(t, status(failing.ID).LastError)
	assert.Equal(t, models.ReminderScheduled, status(notYet.ID).Status)

	rec := status(recurring.ID)
	assert.Equal(t, models.ReminderScheduled, rec.Status)
	assert.Equal(t, time.Date(2026, 3, 3, 8, 30, 0, 0, time.UTC).Unix(), rec.NextRunAt)

	for _, m := range f.sender.messages() {
		assert.Contains(t, m.body, "Please settle this amount soon")
	}

	summary, err = f.dispatcher.DispatchDue(ctx, runAt)
	require.NoError(t, err)
	assert.Zero(t, summary.Due)
}

func TestCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	r, err := f.dispatcher.Schedule(ctx, ScheduleRequest{
		GroupID: f.group.ID, MemberID: f.users[1].ID, SenderID: f.users[0].ID, SendAt: f.now.Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	cancelled, err := f.dispatcher.Cancel(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderCancelled, cancelled.Status)

	_, err = f.dispatcher.Cancel(ctx, r.ID)
	assert.True(t, apperr.IsConflict(err))

	_, err = f.dispatcher.Cancel(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))

	list, err := f.dispatcher.ListScheduled(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReminderCancelled, list[0].Status)
}

func TestConfirmSettlementAndSendTest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice, bob := f.users[0], f.users[1]

	f.dispatcher.ConfirmSettlement(ctx, f.group.Name, &models.Settlement{
		ID: "s1", FromUserID: bob.ID, ToUserID: alice.ID, Amount: decimal.NewFromInt(25),
	})
	require.Len(t, f.sender.messages(), 1)
	assert.Equal(t, bob.PhoneNumber, f.sender.messages()[0].phone)
	assert.Contains(t, f.sender.messages()[0].body, "to Alice in 'Cabin'")

	id, err := f.dispatcher.SendTest(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, alice.PhoneNumber, f.sender.messages()[1].phone)

	_, err = f.dispatcher.SendTest(ctx, "missing", "hi")
	assert.True(t, apperr.IsNotFound(err))

	f.sender.failFor[alice.PhoneNumber] = true
	_, err = f.dispatcher.SendTest(ctx, alice.ID, "hi")
	assert.True(t, apperr.IsDependency(err))
}
