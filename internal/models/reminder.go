package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MessageType selects the reminder template.
type MessageType string

const (
	MessageFriendly MessageType = "friendly"
	MessageUrgent   MessageType = "urgent"
	MessageFinal    MessageType = "final"
)

// ParseMessageType converts a wire value to a MessageType.
// An empty string means friendly.
func ParseMessageType(s string) (MessageType, error) {
	switch t := MessageType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return MessageFriendly, nil
	case MessageFriendly, MessageUrgent, MessageFinal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown message type %q", s)
	}
}

// ReminderStatus is the state of a scheduled reminder.
type ReminderStatus string

const (
	ReminderScheduled ReminderStatus = "scheduled"
	ReminderSent      ReminderStatus = "sent"
	ReminderFailed    ReminderStatus = "failed"
	ReminderCancelled ReminderStatus = "cancelled"
)

// ScheduledReminder is a reminder to be sent at NextRunAt.
// When Schedule holds a cron expression the reminder recurs and stays in
// ReminderScheduled after each run.
type ScheduledReminder struct {
	ID            string
	GroupID       string
	MemberID      string
	CreatedBy     string
	MessageType   MessageType
	CustomMessage string

	// Schedule is a standard 5-field cron expression, empty for one-shot reminders.
	Schedule string

	NextRunAt int64
	Status    ReminderStatus
	LastError string
	CreatedAt int64
}

// Recurring reports whether the reminder repeats on a cron schedule.
func (r *ScheduledReminder) Recurring() bool {
	return r.Schedule != ""
}

// ReminderLog records one dispatch attempt.
type ReminderLog struct {
	ID          string
	GroupID     string
	MemberID    string
	SenderID    string
	Amount      decimal.Decimal
	MessageType MessageType
	Success     bool
	MessageID   string
	Error       string
	SentAt      int64
}
