// Package reminder sends payment reminders to members who owe money,
// immediately or on a schedule.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/notify"
	"github.com/mmynk/settleup/internal/storage"
)

const defaultConcurrency = 4

// Balances is the read side of the ledger used to pick reminder targets.
type Balances interface {
	Group(ctx context.Context, groupID string) (*models.Group, error)
	ComputeGroupBalances(ctx context.Context, groupID string) (map[string]decimal.Decimal, error)
	Candidates(ctx context.Context, groupID string, minimum decimal.Decimal) ([]calculator.Candidate, error)
}

// Store is the persistence the dispatcher needs.
type Store interface {
	storage.UserStore
	storage.ReminderStore
}

// Dispatcher sends reminders through a notify.Sender and records every
// attempt in the reminder log.
type Dispatcher struct {
	balances    Balances
	store       Store
	sender      notify.Sender
	metrics     *metrics.Metrics
	concurrency int
	now         func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency bounds the number of parallel sends in SendBulk.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithMetrics records dispatch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(balances Balances, store Store, sender notify.Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		balances:    balances,
		store:       store,
		sender:      sender,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendRequest asks for a reminder to one member.
type SendRequest struct {
	GroupID       string
	MemberID      string
	SenderID      string
	MessageType   models.MessageType
	CustomMessage string
}

// BulkRequest asks for reminders to every member owing at least Minimum.
type BulkRequest struct {
	GroupID       string
	SenderID      string
	Minimum       decimal.Decimal
	MessageType   models.MessageType
	CustomMessage string
}

// Result is the outcome of one reminder.
type Result struct {
	MemberID   string
	MemberName string
	Amount     decimal.Decimal
	Success    bool
	MessageID  string
	Error      string
}

// SendOne reminds a single member of their outstanding balance. The member
// must currently owe money. A delivery failure is returned as DependencyError.
func (d *Dispatcher) SendOne(ctx context.Context, req SendRequest) (Result, error) {
	group, err := d.balances.Group(ctx, req.GroupID)
	if err != nil {
		return Result{}, err
	}
	if !group.IsMember(req.MemberID) {
		return Result{}, apperr.Validation("user %s is not a member of the group", req.MemberID)
	}

	balances, err := d.balances.ComputeGroupBalances(ctx, req.GroupID)
	if err != nil {
		return Result{}, err
	}
	net := balances[req.MemberID]
	if !net.IsNegative() {
		return Result{}, apperr.Validation("member has no outstanding balance")
	}

	users, err := d.store.GetUsersByIDs(ctx, []string{req.MemberID, req.SenderID})
	if err != nil {
		return Result{}, fmt.Errorf("failed to load users: %w", err)
	}
	member, ok := users[req.MemberID]
	if !ok {
		return Result{}, apperr.NotFound("user %s not found", req.MemberID)
	}

	result := d.deliver(ctx, group, member, users[req.SenderID], net.Neg(), req.MessageType, req.CustomMessage)
	if !result.Success {
		return result, apperr.Dependency(errors.New(result.Error), "failed to send reminder")
	}
	return result, nil
}

// SendBulk reminds every candidate owing at least the minimum, except the
// sender, with bounded parallelism. One failed send does not stop the others;
// results are returned in candidate order.
func (d *Dispatcher) SendBulk(ctx context.Context, req BulkRequest) ([]Result, error) {
	group, err := d.balances.Group(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	candidates, err := d.balances.Candidates(ctx, req.GroupID, req.Minimum)
	if err != nil {
		return nil, err
	}

	targets := make([]calculator.Candidate, 0, len(candidates))
	ids := []string{req.SenderID}
	for _, c := range candidates {
		if c.MemberID == req.SenderID {
			continue
		}
		targets = append(targets, c)
		ids = append(ids, c.MemberID)
	}

	users, err := d.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	sender := users[req.SenderID]

	results := make([]Result, len(targets))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, c := range targets {
		g.Go(func() error {
			member, ok := users[c.MemberID]
			if !ok {
				results[i] = Result{MemberID: c.MemberID, Amount: c.AmountOwed, Error: "user not found"}
				return nil
			}
			results[i] = d.deliver(ctx, group, member, sender, c.AmountOwed, req.MessageType, req.CustomMessage)
			return nil
		})
	}
	_ = g.Wait()

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}
	slog.Info("Bulk reminders dispatched",
		"group_id", req.GroupID,
		"candidates", len(targets),
		"sent", sent,
		"failed", len(targets)-sent,
	)
	return results, nil
}

// deliver renders, sends and logs one reminder. It never returns an error;
// failures are reported in the Result.
func (d *Dispatcher) deliver(ctx context.Context, group *models.Group, member, sender *models.User, amount decimal.Decimal, messageType models.MessageType, custom string) Result {
	senderName := "your group"
	senderID := ""
	if sender != nil {
		senderName = sender.FullName
		senderID = sender.ID
	}
	if messageType == "" {
		messageType = models.MessageFriendly
	}

	body := ReminderMessage(messageType, custom, MessageData{
		MemberName: member.FullName,
		GroupName:  group.Name,
		SenderName: senderName,
		Amount:     amount,
	})

	result := Result{MemberID: member.ID, MemberName: member.FullName, Amount: amount}
	messageID, err := d.sender.Send(ctx, member.PhoneNumber, body)
	if err != nil {
		result.Error = err.Error()
		d.metrics.ObserveReminder("failed")
		slog.Warn("Reminder failed", "group_id", group.ID, "member_id", member.ID, "error", err)
	} else {
		result.Success = true
		result.MessageID = messageID
		d.metrics.ObserveReminder("sent")
		slog.Info("Reminder sent", "group_id", group.ID, "member_id", member.ID, "message_id", messageID)
	}

	entry := &models.ReminderLog{
		ID:          uuid.New().String(),
		GroupID:     group.ID,
		MemberID:    member.ID,
		SenderID:    senderID,
		Amount:      amount,
		MessageType: messageType,
		Success:     result.Success,
		MessageID:   result.MessageID,
		Error:       result.Error,
		SentAt:      d.now().Unix(),
	}
	if err := d.store.CreateReminderLog(ctx, entry); err != nil {
		slog.Error("Failed to write reminder log", "group_id", group.ID, "member_id", member.ID, "error", err)
	}
	return result
}

// History returns the reminder log of a group, newest first.
func (d *Dispatcher) History(ctx context.Context, groupID string) ([]*models.ReminderLog, error) {
	logs, err := d.store.ListReminderLogs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder logs: %w", err)
	}
	return logs, nil
}

// ConfirmSettlement texts the participant that their payment was recorded.
// It is best effort: failures are logged and not returned.
func (d *Dispatcher) ConfirmSettlement(ctx context.Context, groupName string, settlement *models.Settlement) {
	users, err := d.store.GetUsersByIDs(ctx, []string{settlement.FromUserID, settlement.ToUserID})
	if err != nil {
		slog.Warn("Skipping settlement confirmation", "settlement_id", settlement.ID, "error", err)
		return
	}
	from, ok := users[settlement.FromUserID]
	if !ok || from.PhoneNumber == "" {
		return
	}
	payerName := "the payer"
	if to, ok := users[settlement.ToUserID]; ok {
		payerName = to.FullName
	}

	body := SettlementMessage(from.FullName, payerName, groupName, settlement.Amount)
	if _, err := d.sender.Send(ctx, from.PhoneNumber, body); err != nil {
		slog.Warn("Settlement confirmation failed", "settlement_id", settlement.ID, "error", err)
	}
}

// SendTest sends message, or a default text, to the user's own phone.
func (d *Dispatcher) SendTest(ctx context.Context, userID, message string) (string, error) {
	user, err := d.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperr.NotFound("user %s not found", userID)
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if message == "" {
		message = "This is a test message from settleup."
	}

	id, err := d.sender.Send(ctx, user.PhoneNumber, truncate(message))
	if err != nil {
		if apperr.IsValidation(err) || apperr.IsDependency(err) {
			return "", err
		}
		return "", apperr.Dependency(err, "failed to send test message")
	}
	return id, nil
}
