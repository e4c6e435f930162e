package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// ScheduleRequest asks for a reminder at SendAt, or repeatedly on Cron.
// Exactly one of the two must be set.
type ScheduleRequest struct {
	GroupID       string
	MemberID      string
	SenderID      string
	SendAt        int64
	Cron          string
	MessageType   models.MessageType
	CustomMessage string
}

// DispatchSummary counts the outcomes of one DispatchDue run.
type DispatchSummary struct {
	Due     int
	Sent    int
	Failed  int
	Skipped int
}

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, apperr.Validation("invalid cron schedule %q: %v", expr, err)
	}
	return sched, nil
}

// Schedule stores a reminder to be sent later by DispatchDue.
func (d *Dispatcher) Schedule(ctx context.Context, req ScheduleRequest) (*models.ScheduledReminder, error) {
	group, err := d.balances.Group(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.Active {
		return nil, apperr.Validation("group %s is archived", group.ID)
	}
	if !group.IsMember(req.MemberID) {
		return nil, apperr.Validation("user %s is not a member of the group", req.MemberID)
	}

	messageType, err := models.ParseMessageType(string(req.MessageType))
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	now := d.now()
	expr := strings.TrimSpace(req.Cron)
	var nextRun int64
	switch {
	case expr != "" && req.SendAt != 0:
		return nil, apperr.Validation("set either a send time or a cron schedule, not both")
	case expr != "":
		sched, err := ParseSchedule(expr)
		if err != nil {
			return nil, err
		}
		nextRun = sched.Next(now).Unix()
	case req.SendAt > now.Unix():
		nextRun = req.SendAt
	default:
		return nil, apperr.Validation("send time must be in the future")
	}

	reminder := &models.ScheduledReminder{
		ID:            uuid.New().String(),
		GroupID:       group.ID,
		MemberID:      req.MemberID,
		CreatedBy:     req.SenderID,
		MessageType:   messageType,
		CustomMessage: strings.TrimSpace(req.CustomMessage),
		Schedule:      expr,
		NextRunAt:     nextRun,
		Status:        models.ReminderScheduled,
		CreatedAt:     now.Unix(),
	}
	if err := d.store.CreateScheduledReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to schedule reminder: %w", err)
	}

	slog.Info("Reminder scheduled",
		"reminder_id", reminder.ID,
		"group_id", group.ID,
		"member_id", req.MemberID,
		"next_run_at", nextRun,
		"recurring", reminder.Recurring(),
	)
	return reminder, nil
}

// ListScheduled returns a group's scheduled reminders, next run first.
func (d *Dispatcher) ListScheduled(ctx context.Context, groupID string) ([]*models.ScheduledReminder, error) {
	reminders, err := d.store.ListScheduledReminders(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled reminders: %w", err)
	}
	return reminders, nil
}

// GetScheduled loads a scheduled reminder.
func (d *Dispatcher) GetScheduled(ctx context.Context, reminderID string) (*models.ScheduledReminder, error) {
	reminder, err := d.store.GetScheduledReminder(ctx, reminderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("scheduled reminder %s not found", reminderID)
		}
		return nil, fmt.Errorf("failed to get scheduled reminder: %w", err)
	}
	return reminder, nil
}

// Cancel stops a reminder that has not run yet. Only scheduled reminders can
// be cancelled.
func (d *Dispatcher) Cancel(ctx context.Context, reminderID string) (*models.ScheduledReminder, error) {
	reminder, err := d.GetScheduled(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.Status != models.ReminderScheduled {
		return nil, apperr.Conflict("reminder %s is %s and cannot be cancelled", reminderID, reminder.Status)
	}

	reminder.Status = models.ReminderCancelled
	if err := d.store.UpdateScheduledReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to cancel reminder: %w", err)
	}
	slog.Info("Reminder cancelled", "reminder_id", reminderID)
	return reminder, nil
}

// DispatchDue sends every scheduled reminder whose next run is at or before
// now. One-shot reminders end as sent, failed or cancelled (nothing owed);
// recurring reminders stay scheduled and move to their next cron time.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (DispatchSummary, error) {
	due, err := d.store.ListDueReminders(ctx, now.Unix())
	if err != nil {
		return DispatchSummary{}, fmt.Errorf("failed to list due reminders: %w", err)
	}

	summary := DispatchSummary{Due: len(due)}
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, detail := d.runScheduled(ctx, r)
		switch outcome {
		case "sent":
			summary.Sent++
		case "failed":
			summary.Failed++
		default:
			summary.Skipped++
		}

		r.LastError = detail
		if r.Recurring() {
			sched, err := ParseSchedule(r.Schedule)
			if err != nil {
				r.Status = models.ReminderFailed
				r.LastError = err.Error()
			} else {
				r.NextRunAt = sched.Next(now).Unix()
			}
		} else {
			switch outcome {
			case "sent":
				r.Status = models.ReminderSent
			case "failed":
				r.Status = models.ReminderFailed
			default:
				r.Status = models.ReminderCancelled
			}
		}

		if err := d.store.UpdateScheduledReminder(ctx, r); err != nil {
			return summary, fmt.Errorf("failed to update reminder %s: %w", r.ID, err)
		}
	}

	slog.Info("Due reminders dispatched",
		"due", summary.Due,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// runScheduled sends one due reminder and reports "sent", "failed" or
// "skipped" with an explanatory detail.
func (d *Dispatcher) runScheduled(ctx context.Context, r *models.ScheduledReminder) (string, string) {
	result, err := d.SendOne(ctx, SendRequest{
		GroupID:       r.GroupID,
		MemberID:      r.MemberID,
		SenderID:      r.CreatedBy,
		MessageType:   r.MessageType,
		CustomMessage: r.CustomMessage,
	})
	switch {
	case err == nil:
		return "sent", ""
	case apperr.IsDependency(err):
		return "failed", result.Error
	case apperr.IsValidation(err) || apperr.IsNotFound(err):
		d.metrics.ObserveReminder("skipped")
		slog.Info("Scheduled reminder skipped", "reminder_id", r.ID, "reason", err.Error())
		return "skipped", err.Error()
	default:
		slog.Error("Scheduled reminder failed", "reminder_id", r.ID, "error", err)
		return "failed", err.Error()
	}
}
