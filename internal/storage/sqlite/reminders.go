package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

const reminderColumns = `id, group_id, member_id, created_by, message_type, custom_message,
	schedule, next_run_at, status, last_error, created_at`

func scanReminder(row rowScanner) (*models.ScheduledReminder, error) {
	r := &models.ScheduledReminder{}
	err := row.Scan(&r.ID, &r.GroupID, &r.MemberID, &r.CreatedBy, &r.MessageType, &r.CustomMessage,
		&r.Schedule, &r.NextRunAt, &r.Status, &r.LastError, &r.CreatedAt)
	return r, err
}

// CreateScheduledReminder persists a new scheduled reminder.
func (s *SQLiteStore) CreateScheduledReminder(ctx context.Context, r *models.ScheduledReminder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_reminders (`+reminderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GroupID, r.MemberID, r.CreatedBy, string(r.MessageType), r.CustomMessage,
		r.Schedule, r.NextRunAt, string(r.Status), r.LastError, r.CreatedAt,
	)
	if err != nil {
		return mapError(err, "insert scheduled reminder")
	}
	return nil
}

// GetScheduledReminder retrieves a scheduled reminder by ID.
func (s *SQLiteStore) GetScheduledReminder(ctx context.Context, id string) (*models.ScheduledReminder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM scheduled_reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err != nil {
		return nil, mapError(err, "get scheduled reminder")
	}
	return r, nil
}

// ListScheduledReminders returns a group's reminders, next run first.
func (s *SQLiteStore) ListScheduledReminders(ctx context.Context, groupID string) ([]*models.ScheduledReminder, error) {
	return s.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM scheduled_reminders WHERE group_id = ? ORDER BY next_run_at, id`,
		groupID,
	)
}

// ListDueReminders returns scheduled reminders whose next run is at or before now.
func (s *SQLiteStore) ListDueReminders(ctx context.Context, now int64) ([]*models.ScheduledReminder, error) {
	return s.queryReminders(ctx,
		`SELECT `+reminderColumns+` FROM scheduled_reminders
		 WHERE status = ? AND next_run_at <= ? ORDER BY next_run_at, id`,
		string(models.ReminderScheduled), now,
	)
}

func (s *SQLiteStore) queryReminders(ctx context.Context, query string, args ...any) ([]*models.ScheduledReminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.ScheduledReminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled reminders: %w", err)
	}
	return reminders, nil
}

// UpdateScheduledReminder saves the status, next run and last error.
func (s *SQLiteStore) UpdateScheduledReminder(ctx context.Context, r *models.ScheduledReminder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_reminders SET status = ?, next_run_at = ?, last_error = ? WHERE id = ?`,
		string(r.Status), r.NextRunAt, r.LastError, r.ID,
	)
	if err != nil {
		return mapError(err, "update scheduled reminder")
	}
	return requireAffected(res, "update scheduled reminder")
}

// CreateReminderLog appends a dispatch attempt to the reminder log.
func (s *SQLiteStore) CreateReminderLog(ctx context.Context, entry *models.ReminderLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminder_logs (id, group_id, member_id, sender_id, amount, message_type,
		                            success, message_id, error, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.GroupID, entry.MemberID, entry.SenderID, entry.Amount.StringFixed(2),
		string(entry.MessageType), boolToInt(entry.Success), entry.MessageID, entry.Error, entry.SentAt,
	)
	if err != nil {
		return mapError(err, "insert reminder log")
	}
	return nil
}

// ListReminderLogs returns a group's dispatch history, newest first.
func (s *SQLiteStore) ListReminderLogs(ctx context.Context, groupID string) ([]*models.ReminderLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, member_id, sender_id, amount, message_type, success, message_id, error, sent_at
		 FROM reminder_logs WHERE group_id = ? ORDER BY sent_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ReminderLog
	for rows.Next() {
		l := &models.ReminderLog{}
		if err := rows.Scan(&l.ID, &l.GroupID, &l.MemberID, &l.SenderID, &l.Amount, &l.MessageType,
			&l.Success, &l.MessageID, &l.Error, &l.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder logs: %w", err)
	}
	return logs, nil
}
