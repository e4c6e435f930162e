package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/reminder"
	"github.com/mmynk/settleup/internal/storage"
	pb "github.com/mmynk/settleup/pkg/api"
)

// ReminderService implements the Connect ReminderService.
type ReminderService struct {
	ledger     *ledger.Ledger
	users      storage.UserStore
	dispatcher *reminder.Dispatcher
	minimum    decimal.Decimal
}

// NewReminderService creates a new ReminderService. minimum is the smallest
// debt reminded about when a request does not set one.
func NewReminderService(l *ledger.Ledger, users storage.UserStore, dispatcher *reminder.Dispatcher, minimum decimal.Decimal) *ReminderService {
	return &ReminderService{
		ledger:     l,
		users:      users,
		dispatcher: dispatcher,
		minimum:    minimum,
	}
}

// adminGroup loads a group and requires the caller to administer it.
func (s *ReminderService) adminGroup(ctx context.Context, groupID string) (*models.Group, string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, "", err
	}
	group, err := s.ledger.Group(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	if err := requireAdmin(group, userID); err != nil {
		return nil, "", err
	}
	return group, userID, nil
}

func (s *ReminderService) minimumOf(value string) (decimal.Decimal, error) {
	if value == "" {
		return s.minimum, nil
	}
	minimum, err := parseMoney("minimum amount", value)
	if err != nil {
		return decimal.Zero, err
	}
	if minimum.IsNegative() {
		return decimal.Zero, apperr.Validation("minimum amount cannot be negative")
	}
	return minimum, nil
}

func messageType(value string) (models.MessageType, error) {
	mt, err := models.ParseMessageType(value)
	if err != nil {
		return "", apperr.Validation("%s", err.Error())
	}
	return mt, nil
}

// GetReminderCandidates lists members owing at least the minimum, largest debt first.
func (s *ReminderService) GetReminderCandidates(ctx context.Context, req *connect.Request[pb.GetReminderCandidatesRequest]) (*connect.Response[pb.GetReminderCandidatesResponse], error) {
	group, _, err := s.adminGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	minimum, err := s.minimumOf(req.Msg.MinimumAmount)
	if err != nil {
		return nil, err
	}

	candidates, err := s.ledger.Candidates(ctx, group.ID, minimum)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.MemberID)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	out := make([]*pb.Candidate, 0, len(candidates))
	for _, c := range candidates {
		candidate := &pb.Candidate{
			MemberId:   c.MemberID,
			AmountOwed: money(c.AmountOwed),
		}
		if u, ok := users[c.MemberID]; ok {
			candidate.MemberName = u.FullName
			candidate.PhoneNumber = u.PhoneNumber
		}
		out = append(out, candidate)
		total = total.Add(c.AmountOwed)
	}

	return connect.NewResponse(&pb.GetReminderCandidatesResponse{
		Candidates: out,
		TotalOwed:  money(total),
	}), nil
}

// SendReminder texts one member about their outstanding balance.
func (s *ReminderService) SendReminder(ctx context.Context, req *connect.Request[pb.SendReminderRequest]) (*connect.Response[pb.SendReminderResponse], error) {
	group, userID, err := s.adminGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	mt, err := messageType(req.Msg.MessageType)
	if err != nil {
		return nil, err
	}

	slog.Info("SendReminder request received", "group_id", group.ID, "member_id", req.Msg.MemberId, "message_type", mt)
	result, err := s.dispatcher.SendOne(ctx, reminder.SendRequest{
		GroupID:       group.ID,
		MemberID:      req.Msg.MemberId,
		SenderID:      userID,
		MessageType:   mt,
		CustomMessage: req.Msg.CustomMessage,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.SendReminderResponse{Result: toReminderResult(result)}), nil
}

// SendBulkReminders texts every member owing at least the minimum.
func (s *ReminderService) SendBulkReminders(ctx context.Context, req *connect.Request[pb.SendBulkRemindersRequest]) (*connect.Response[pb.SendBulkRemindersResponse], error) {
	group, userID, err := s.adminGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	minimum, err := s.minimumOf(req.Msg.MinimumAmount)
	if err != nil {
		return nil, err
	}
	mt, err := messageType(req.Msg.MessageType)
	if err != nil {
		return nil, err
	}

	results, err := s.dispatcher.SendBulk(ctx, reminder.BulkRequest{
		GroupID:       group.ID,
		SenderID:      userID,
		Minimum:       minimum,
		MessageType:   mt,
		CustomMessage: req.Msg.CustomMessage,
	})
	if err != nil {
		return nil, err
	}

	resp := &pb.SendBulkRemindersResponse{Results: make([]*pb.ReminderResult, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, toReminderResult(r))
		if r.Success {
			resp.Sent++
		} else {
			resp.Failed++
		}
	}
	return connect.NewResponse(resp), nil
}

// ScheduleReminder stores a one-shot or recurring reminder.
func (s *ReminderService) ScheduleReminder(ctx context.Context, req *connect.Request[pb.ScheduleReminderRequest]) (*connect.Response[pb.ScheduledReminderResponse], error) {
	group, userID, err := s.adminGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	r, err := s.dispatcher.Schedule(ctx, reminder.ScheduleRequest{
		GroupID:       group.ID,
		MemberID:      req.Msg.MemberId,
		SenderID:      userID,
		SendAt:        req.Msg.SendAt,
		Cron:          req.Msg.Cron,
		MessageType:   models.MessageType(req.Msg.MessageType),
		CustomMessage: req.Msg.CustomMessage,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.ScheduledReminderResponse{Reminder: toScheduledReminder(r)}), nil
}

// ListScheduledReminders returns the group's scheduled reminders.
func (s *ReminderService) ListScheduledReminders(ctx context.Context, req *connect.Request[pb.ListScheduledRemindersRequest]) (*connect.Response[pb.ListScheduledRemindersResponse], error) {
	group, _, err := s.adminGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	reminders, err := s.dispatcher.ListScheduled(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*pb.ScheduledReminder, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, toScheduledReminder(r))
	}
	return connect.NewResponse(&pb.ListScheduledRemindersResponse{Reminders: out}), nil
}

// CancelScheduledReminder stops a pending reminder from being sent.
func (s *ReminderService) CancelScheduledReminder(ctx context.Context, req *connect.Request[pb.CancelScheduledReminderRequest]) (*connect.Response[pb.ScheduledReminderResponse], error) {
	r, err := s.dispatcher.GetScheduled(ctx, req.Msg.ReminderId)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.adminGroup(ctx, r.GroupID); err != nil {
		return nil, err
	}

	r, err = s.dispatcher.Cancel(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.ScheduledReminderResponse{Reminder: toScheduledReminder(r)}), nil
}

// ListReminderHistory returns every reminder attempt for the group, newest first.
func (s *ReminderService) ListReminderHistory(ctx context.Context, req *connect.Request[pb.ListReminderHistoryRequest]) (*connect.Response[pb.ListReminderHistoryResponse], error) {
	group, _, err := s.adminGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	logs, err := s.dispatcher.History(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*pb.ReminderLogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, toReminderLog(l))
	}
	return connect.NewResponse(&pb.ListReminderHistoryResponse{Entries: out}), nil
}

// SendTestMessage texts the caller's own phone to check SMS delivery.
func (s *ReminderService) SendTestMessage(ctx context.Context, req *connect.Request[pb.SendTestMessageRequest]) (*connect.Response[pb.SendTestMessageResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	messageID, err := s.dispatcher.SendTest(ctx, userID, req.Msg.Message)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.SendTestMessageResponse{MessageId: messageID}), nil
}
