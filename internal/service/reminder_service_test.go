package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pb "github.com/mmynk/settleup/pkg/api"
)

type reminderFixture struct {
	ts                *testServer
	alice, bob, carol *session
	group             *pb.Group
}

// setupReminders builds a group where Alice paid 90 split three ways and Bob
// paid 20 split with Carol, so Carol owes 40 and Bob owes 20.
func setupReminders(t *testing.T) *reminderFixture {
	t.Helper()
	ts := setupTestServer(t)
	f := &reminderFixture{
		ts:    ts,
		alice: ts.register(t, "Alice", "alice@example.com"),
		bob:   ts.register(t, "Bob", "bob@example.com"),
		carol: ts.register(t, "Carol", "carol@example.com"),
	}
	f.group = ts.createGroup(t, f.alice, "Home", f.bob, f.carol)
	ts.addEqualExpense(t, f.alice, f.group.Id, f.alice, "90.00", f.alice, f.bob, f.carol)
	ts.addEqualExpense(t, f.bob, f.group.Id, f.bob, "20.00", f.bob, f.carol)
	return f
}

func TestGetReminderCandidates(t *testing.T) {
	f := setupReminders(t)

	resp, err := f.ts.reminders.GetReminderCandidates(context.Background(), withToken(f.alice, &pb.GetReminderCandidatesRequest{
		GroupId: f.group.Id,
	}))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Candidates, 2)
	assert.Equal(t, f.carol.userID, resp.Msg.Candidates[0].MemberId)
	assert.Equal(t, "Carol", resp.Msg.Candidates[0].MemberName)
	assert.Equal(t, f.carol.phone, resp.Msg.Candidates[0].PhoneNumber)
	assert.Equal(t, "40.00", resp.Msg.Candidates[0].AmountOwed)
	assert.Equal(t, f.bob.userID, resp.Msg.Candidates[1].MemberId)
	assert.Equal(t, "20.00", resp.Msg.Candidates[1].AmountOwed)
	assert.Equal(t, "60.00", resp.Msg.TotalOwed)

	resp, err = f.ts.reminders.GetReminderCandidates(context.Background(), withToken(f.alice, &pb.GetReminderCandidatesRequest{
		GroupId:       f.group.Id,
		MinimumAmount: "25",
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Candidates, 1)
	assert.Equal(t, f.carol.userID, resp.Msg.Candidates[0].MemberId)
}

func TestReminderProceduresRequireAdmin(t *testing.T) {
	f := setupReminders(t)
	ctx := context.Background()

	_, err := f.ts.reminders.GetReminderCandidates(ctx, withToken(f.bob, &pb.GetReminderCandidatesRequest{GroupId: f.group.Id}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = f.ts.reminders.SendBulkReminders(ctx, withToken(f.bob, &pb.SendBulkRemindersRequest{GroupId: f.group.Id}))
	requireCode(t, err, connect.CodePermissionDenied)

	assert.Empty(t, f.ts.sender.messages())
}

func TestSendReminder(t *testing.T) {
	f := setupReminders(t)
	ctx := context.Background()

	resp, err := f.ts.reminders.SendReminder(ctx, withToken(f.alice, &pb.SendReminderRequest{
		GroupId:     f.group.Id,
		MemberId:    f.carol.userID,
		MessageType: "urgent",
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Result.Success)
	assert.Equal(t, "40.00", resp.Msg.Result.Amount)
	assert.NotEmpty(t, resp.Msg.Result.MessageId)

	msgs := f.ts.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, f.carol.phone, msgs[0].phone)
	assert.Contains(t, msgs[0].body, "$40.00")

	// Alice is owed money, so there is nothing to remind her about.
	_, err = f.ts.reminders.SendReminder(ctx, withToken(f.alice, &pb.SendReminderRequest{
		GroupId:  f.group.Id,
		MemberId: f.alice.userID,
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = f.ts.reminders.SendReminder(ctx, withToken(f.alice, &pb.SendReminderRequest{
		GroupId:     f.group.Id,
		MemberId:    f.carol.userID,
		MessageType: "threatening",
	}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestSendReminderDeliveryFailure(t *testing.T) {
	f := setupReminders(t)
	f.ts.sender.failFor[f.carol.phone] = true

	_, err := f.ts.reminders.SendReminder(context.Background(), withToken(f.alice, &pb.SendReminderRequest{
		GroupId:  f.group.Id,
		MemberId: f.carol.userID,
	}))
	requireCode(t, err, connect.CodeUnavailable)
}

func TestSendBulkReminders(t *testing.T) {
	f := setupReminders(t)
	ctx := context.Background()
	f.ts.sender.failFor[f.bob.phone] = true

	resp, err := f.ts.reminders.SendBulkReminders(ctx, withToken(f.alice, &pb.SendBulkRemindersRequest{
		GroupId:     f.group.Id,
		MessageType: "final",
	}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Msg.Sent)
	assert.EqualValues(t, 1, resp.Msg.Failed)
	require.Len(t, resp.Msg.Results, 2)
	assert.Equal(t, f.carol.userID, resp.Msg.Results[0].MemberId)
	assert.True(t, resp.Msg.Results[0].Success)
	assert.False(t, resp.Msg.Results[1].Success)
	assert.NotEmpty(t, resp.Msg.Results[1].Error)

	history, err := f.ts.reminders.ListReminderHistory(ctx, withToken(f.alice, &pb.ListReminderHistoryRequest{GroupId: f.group.Id}))
	require.NoError(t, err)
	assert.Len(t, history.Msg.Entries, 2)
	for _, e := range history.Msg.Entries {
		assert.Equal(t, f.alice.userID, e.SenderId)
		assert.Equal(t, "final", e.MessageType)
	}
}

func TestSendBulkRemindersSkipsSender(t *testing.T) {
	f := setupReminders(t)
	ctx := context.Background()

	// Bob becomes an admin and reminds everyone; he owes money himself.
	_, err := f.ts.groups.UpdateMemberRole(ctx, withToken(f.alice, &pb.UpdateMemberRoleRequest{
		GroupId: f.group.Id, UserId: f.bob.userID, Role: "admin",
	}))
	require.NoError(t, err)

	resp, err := f.ts.reminders.SendBulkReminders(ctx, withToken(f.bob, &pb.SendBulkRemindersRequest{GroupId: f.group.Id}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Results, 1)
	assert.Equal(t, f.carol.userID, resp.Msg.Results[0].MemberId)
}

func TestScheduleAndCancelReminder(t *testing.T) {
	f := setupReminders(t)
	ctx := context.Background()

	_, err := f.ts.reminders.ScheduleReminder(ctx, withToken(f.alice, &pb.ScheduleReminderRequest{
		GroupId:  f.group.Id,
		MemberId: f.carol.userID,
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = f.ts.reminders.ScheduleReminder(ctx, withToken(f.alice, &pb.ScheduleReminderRequest{
		GroupId:  f.group.Id,
		MemberId: f.carol.userID,
		Cron:     "every tuesday",
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	sendAt := time.Now().Add(time.Hour).Unix()
	oneShot, err := f.ts.reminders.ScheduleReminder(ctx, withToken(f.alice, &pb.ScheduleReminderRequest{
		GroupId:  f.group.Id,
		MemberId: f.carol.userID,
		SendAt:   sendAt,
	}))
	require.NoError(t, err)
	assert.Equal(t, sendAt, oneShot.Msg.Reminder.NextRunAt)
	assert.Equal(t, "scheduled", oneShot.Msg.Reminder.Status)

	weekly, err := f.ts.reminders.ScheduleReminder(ctx, withToken(f.alice, &pb.ScheduleReminderRequest{
		GroupId:     f.group.Id,
		MemberId:    f.bob.userID,
		Cron:        "0 9 * * 1",
		MessageType: "friendly",
	}))
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * 1", weekly.Msg.Reminder.Cron)
	assert.Greater(t, weekly.Msg.Reminder.NextRunAt, time.Now().Unix())

	list, err := f.ts.reminders.ListScheduledReminders(ctx, withToken(f.alice, &pb.ListScheduledRemindersRequest{GroupId: f.group.Id}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Reminders, 2)

	_, err = f.ts.reminders.CancelScheduledReminder(ctx, withToken(f.bob, &pb.CancelScheduledReminderRequest{
		ReminderId: oneShot.Msg.Reminder.Id,
	}))
	requireCode(t, err, connect.CodePermissionDenied)

	cancelled, err := f.ts.reminders.CancelScheduledReminder(ctx, withToken(f.alice, &pb.CancelScheduledReminderRequest{
		ReminderId: oneShot.Msg.Reminder.Id,
	}))
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Msg.Reminder.Status)

	_, err = f.ts.reminders.CancelScheduledReminder(ctx, withToken(f.alice, &pb.CancelScheduledReminderRequest{
		ReminderId: oneShot.Msg.Reminder.Id,
	}))
	requireCode(t, err, connect.CodeFailedPrecondition)
}

func TestSendTestMessage(t *testing.T) {
	f := setupReminders(t)

	// Any authenticated user may text themselves.
	resp, err := f.ts.reminders.SendTestMessage(context.Background(), withToken(f.bob, &pb.SendTestMessageRequest{}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Msg.MessageId)

	msgs := f.ts.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, f.bob.phone, msgs[0].phone)
}
