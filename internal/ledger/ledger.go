// Package ledger owns expense persistence rules and the settlement state of
// participations, and derives balances from them on every read.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const maxTitleLength = 200

// Store is the persistence the ledger needs.
type Store interface {
	storage.GroupStore
	storage.ExpenseStore
}

// Ledger creates, edits and settles expenses.
type Ledger struct {
	store Store
	now   func() time.Time
}

// New creates a Ledger backed by store.
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// ExpenseInput describes an expense to create or the new state of one being edited.
type ExpenseInput struct {
	GroupID     string
	Title       string
	Description string
	Amount      decimal.Decimal
	Category    string
	PayerID     string
	ExpenseDate int64 // zero means now
	Rule        calculator.Rule
}

// SettleResult is the outcome of MarkSettled.
type SettleResult struct {
	Expense       *models.Expense
	Participation models.Participation
	Settlement    *models.Settlement
}

// translate converts storage sentinels into domain errors.
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(format, args...)
	case errors.Is(err, storage.ErrConflict):
		return apperr.Conflict(format, args...)
	default:
		return err
	}
}

// Group loads a group, returning NotFoundError if it does not exist.
func (l *Ledger) Group(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, translate(err, "group %s not found", groupID)
	}
	return group, nil
}

// CreateExpense splits the amount and stores the expense with one
// participation per participant, atomically.
func (l *Ledger) CreateExpense(ctx context.Context, createdBy string, in ExpenseInput) (*models.Expense, error) {
	group, err := l.Group(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	now := l.now().Unix()
	expense := &models.Expense{
		ID:        uuid.New().String(),
		GroupID:   group.ID,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if err := l.apply(group, expense, in, now); err != nil {
		return nil, err
	}

	if err := l.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"amount", expense.Amount.StringFixed(2),
		"split_method", expense.SplitMethod,
		"participants", len(expense.Participations),
	)
	return expense, nil
}

// UpdateExpense replaces an expense's details and regenerates its
// participations from the new amount and rule. An expense with any settled
// participation cannot be edited.
func (l *Ledger) UpdateExpense(ctx context.Context, expenseID string, in ExpenseInput) (*models.Expense, error) {
	expense, err := l.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.HasSettledParticipation() {
		return nil, apperr.Conflict("expense %s has settled participations and cannot be edited", expenseID)
	}

	group, err := l.Group(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	in.GroupID = expense.GroupID
	if err := l.apply(group, expense, in, l.now().Unix()); err != nil {
		return nil, err
	}

	if err := l.store.ReplaceExpense(ctx, expense); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict("expense %s has settled participations and cannot be edited", expenseID)
		}
		return nil, translate(err, "expense %s not found", expenseID)
	}

	slog.Info("Expense updated",
		"expense_id", expense.ID,
		"amount", expense.Amount.StringFixed(2),
		"split_method", expense.SplitMethod,
	)
	return expense, nil
}

// apply validates in against group and writes it, with freshly computed
// participations, onto expense.
func (l *Ledger) apply(group *models.Group, expense *models.Expense, in ExpenseInput, now int64) error {
	if !group.Active {
		return apperr.Validation("group %s is archived", group.ID)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len(title) > maxTitleLength {
		return apperr.Validation("title must be at most %d characters", maxTitleLength)
	}
	if in.Rule == nil {
		return apperr.Validation("split rule is required")
	}
	if !group.IsMember(in.PayerID) {
		return apperr.Validation("payer %s is not a member of the group", in.PayerID)
	}
	for _, id := range calculator.MemberIDs(in.Rule) {
		if id != "" && !group.IsMember(id) {
			return apperr.Validation("participant %s is not a member of the group", id)
		}
	}

	shares, err := calculator.Split(in.Amount, in.Rule)
	if err != nil {
		return err
	}

	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = models.DefaultCategory
	}
	expenseDate := in.ExpenseDate
	if expenseDate == 0 {
		expenseDate = now
	}

	expense.Title = title
	expense.Description = strings.TrimSpace(in.Description)
	expense.Amount = in.Amount
	expense.Category = category
	expense.PayerID = in.PayerID
	expense.SplitMethod = in.Rule.Method()
	expense.ExpenseDate = expenseDate
	expense.UpdatedAt = now

	expense.Participations = make([]models.Participation, len(shares))
	for i, s := range shares {
		expense.Participations[i] = models.Participation{
			ID:        uuid.New().String(),
			ExpenseID: expense.ID,
			MemberID:  s.MemberID,
			Position:  i,
			Share:     s.Amount,
		}
	}
	return nil
}

// DeleteExpense removes an expense and its participations. An expense with
// any settled participation cannot be deleted.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID string) error {
	expense, err := l.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.HasSettledParticipation() {
		return apperr.Conflict("expense %s has settled participations and cannot be deleted", expenseID)
	}

	if err := l.store.DeleteExpense(ctx, expenseID); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return apperr.Conflict("expense %s has settled participations and cannot be deleted", expenseID)
		}
		return translate(err, "expense %s not found", expenseID)
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "group_id", expense.GroupID)
	return nil
}

// GetExpense loads an expense with its participations.
func (l *Ledger) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, translate(err, "expense %s not found", expenseID)
	}
	return expense, nil
}

// ExpenseForParticipation loads the expense that owns a participation.
func (l *Ledger) ExpenseForParticipation(ctx context.Context, participationID string) (*models.Expense, error) {
	expense, err := l.store.GetExpenseByParticipation(ctx, participationID)
	if err != nil {
		return nil, translate(err, "participation %s not found", participationID)
	}
	return expense, nil
}

// ListExpenses returns one page of a group's expenses and the total count.
func (l *Ledger) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]models.Expense, int, error) {
	expenses, total, err := l.store.ListExpenses(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, total, nil
}

// MarkSettled marks a participation paid and records a settlement from the
// participant to the payer. Settling is forward only: a second call returns
// ConflictError and changes nothing.
func (l *Ledger) MarkSettled(ctx context.Context, participationID string, method models.SettlementMethod, settledBy, note string) (*SettleResult, error) {
	method, err := models.ParseSettlementMethod(string(method))
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	expense, err := l.ExpenseForParticipation(ctx, participationID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, p := range expense.Participations {
		if p.ID == participationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NotFound("participation %s not found", participationID)
	}
	if expense.Participations[idx].Paid {
		return nil, apperr.Conflict("participation %s is already settled", participationID)
	}

	participation := expense.Participations[idx]
	now := l.now().Unix()
	settlement := &models.Settlement{
		ID:              uuid.New().String(),
		GroupID:         expense.GroupID,
		ExpenseID:       expense.ID,
		ParticipationID: participation.ID,
		FromUserID:      participation.MemberID,
		ToUserID:        expense.PayerID,
		Amount:          participation.Share,
		Method:          method,
		CreatedAt:       now,
		CreatedBy:       settledBy,
		Note:            strings.TrimSpace(note),
	}

	if err := l.store.SettleParticipation(ctx, participationID, settlement); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict("participation %s is already settled", participationID)
		}
		return nil, translate(err, "participation %s not found", participationID)
	}

	participation.Paid = true
	participation.Method = method
	participation.SettledAt = now
	expense.Participations[idx] = participation

	slog.Info("Participation settled",
		"participation_id", participationID,
		"expense_id", expense.ID,
		"member_id", participation.MemberID,
		"amount", participation.Share.StringFixed(2),
		"method", method,
	)
	return &SettleResult{Expense: expense, Participation: participation, Settlement: settlement}, nil
}

// ListSettlements returns a group's settlement records, newest first.
func (l *Ledger) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	settlements, err := l.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return settlements, nil
}
