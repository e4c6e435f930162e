// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write violates a uniqueness or state constraint,
	// such as a duplicate email or settling an already paid participation.
	ErrConflict = errors.New("record conflict")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrConflict if the email or phone is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail looks up a user by normalized email.
	// Returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByPhone looks up a user by phone number as stored.
	// Returns ErrNotFound if no user has the number.
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser saves name, phone, password hash and active flag.
	UpdateUser(ctx context.Context, user *models.User) error
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup inserts the group together with its initial memberships.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with all memberships, active or not.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// ListGroupsForUser returns the active groups the user is an active member of,
	// most recently updated first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup saves name, description and active flag.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// SaveMembership inserts the membership or updates role and active flag
	// if the user already has one in the group.
	SaveMembership(ctx context.Context, membership models.Membership) error
}

// ExpenseFilter narrows ListExpenses.
type ExpenseFilter struct {
	GroupID  string
	Category string // empty matches all
	Limit    int    // zero means no limit
	Offset   int
}

// ExpenseStore persists expenses, their participations and settlements.
type ExpenseStore interface {
	// CreateExpense inserts the expense and its participations in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns the expense with participations ordered by position.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// GetExpenseByParticipation returns the expense owning the participation.
	GetExpenseByParticipation(ctx context.Context, participationID string) (*models.Expense, error)

	// ListExpenses returns a page of a group's expenses, newest expense date
	// first, and the total number of matches.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]models.Expense, int, error)

	// ListExpensesByGroup returns every expense of the group with participations.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// ReplaceExpense saves the expense and replaces all of its participations
	// in one transaction. Returns ErrConflict if a stored participation is paid.
	ReplaceExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes the expense and its participations.
	// Returns ErrConflict if a participation is paid.
	DeleteExpense(ctx context.Context, id string) error

	// SettleParticipation marks the participation paid and records the settlement
	// in one transaction. Returns ErrConflict if it was already paid.
	SettleParticipation(ctx context.Context, participationID string, settlement *models.Settlement) error

	// ListSettlementsByGroup returns the group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
}

// ReminderStore persists scheduled reminders and the dispatch log.
type ReminderStore interface {
	CreateScheduledReminder(ctx context.Context, reminder *models.ScheduledReminder) error
	GetScheduledReminder(ctx context.Context, id string) (*models.ScheduledReminder, error)
	ListScheduledReminders(ctx context.Context, groupID string) ([]*models.ScheduledReminder, error)

	// ListDueReminders returns scheduled reminders whose next run is at or before now.
	ListDueReminders(ctx context.Context, now int64) ([]*models.ScheduledReminder, error)

	// UpdateScheduledReminder saves status, next run and last error.
	UpdateScheduledReminder(ctx context.Context, reminder *models.ScheduledReminder) error

	CreateReminderLog(ctx context.Context, entry *models.ReminderLog) error
	ListReminderLogs(ctx context.Context, groupID string) ([]*models.ReminderLog, error)
}

// Store defines the full persistence contract.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	ReminderStore

	// Close releases any resources held by the store.
	Close() error
}
