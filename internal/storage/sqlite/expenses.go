package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const expenseColumns = `id, group_id, title, description, amount, category, payer_id, created_by,
	split_method, expense_date, created_at, updated_at`

const participationColumns = `id, expense_id, member_id, position, share, paid, method, settled_at`

func scanExpense(row rowScanner) (models.Expense, error) {
	var e models.Expense
	err := row.Scan(
		&e.ID, &e.GroupID, &e.Title, &e.Description, &e.Amount, &e.Category,
		&e.PayerID, &e.CreatedBy, &e.SplitMethod, &e.ExpenseDate, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func scanParticipation(row rowScanner) (models.Participation, error) {
	var (
		p         models.Participation
		method    sql.NullString
		settledAt sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.ExpenseID, &p.MemberID, &p.Position, &p.Share, &p.Paid, &method, &settledAt)
	if err != nil {
		return p, err
	}
	p.Method = models.SettlementMethod(method.String)
	p.SettledAt = settledAt.Int64
	return p, nil
}

// CreateExpense persists a new expense and its participations atomically.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Title, expense.Description,
			expense.Amount.StringFixed(2), expense.Category, expense.PayerID, expense.CreatedBy,
			string(expense.SplitMethod), expense.ExpenseDate, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert expense")
		}
		return insertParticipations(ctx, tx, expense.Participations)
	})
}

func insertParticipations(ctx context.Context, tx *sql.Tx, participations []models.Participation) error {
	for _, p := range participations {
		var settledAt any
		if p.Paid {
			settledAt = p.SettledAt
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participations (`+participationColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ExpenseID, p.MemberID, p.Position, p.Share.StringFixed(2),
			boolToInt(p.Paid), nullString(string(p.Method)), settledAt,
		)
		if err != nil {
			return mapError(err, "insert participation")
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID with its participations.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID)
	expense, err := scanExpense(row)
	if err != nil {
		return nil, mapError(err, "get expense")
	}

	participations, err := s.queryParticipations(ctx,
		`SELECT `+participationColumns+` FROM participations WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	expense.Participations = participations

	return &expense, nil
}

// GetExpenseByParticipation retrieves the expense that owns a participation.
func (s *SQLiteStore) GetExpenseByParticipation(ctx context.Context, participationID string) (*models.Expense, error) {
	var expenseID string
	err := s.db.QueryRowContext(ctx,
		`SELECT expense_id FROM participations WHERE id = ?`, participationID,
	).Scan(&expenseID)
	if err != nil {
		return nil, mapError(err, "get participation")
	}
	return s.GetExpense(ctx, expenseID)
}

// ListExpenses returns one page of a group's expenses and the number of matches.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]models.Expense, int, error) {
	where := "group_id = ?"
	args := []any{filter.GroupID}
	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + where +
		` ORDER BY expense_date DESC, created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	expenses, err := s.queryExpenses(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachParticipations(ctx, expenses); err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListExpensesByGroup retrieves every expense of a group with participations,
// oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	expenses, err := s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? ORDER BY expense_date, created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	if err := s.attachParticipations(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func (s *SQLiteStore) queryParticipations(ctx context.Context, query string, args ...any) ([]models.Participation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get participations: %w", err)
	}
	defer rows.Close()

	var participations []models.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participations: %w", err)
	}
	return participations, nil
}

// attachParticipations loads the participations of expenses in one query.
func (s *SQLiteStore) attachParticipations(ctx context.Context, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	args := make([]any, len(expenses))
	index := make(map[string]int, len(expenses))
	for i, e := range expenses {
		args[i] = e.ID
		index[e.ID] = i
	}

	participations, err := s.queryParticipations(ctx,
		`SELECT `+participationColumns+` FROM participations
		 WHERE expense_id IN (`+placeholders(len(expenses))+`)
		 ORDER BY expense_id, position`,
		args...,
	)
	if err != nil {
		return err
	}

	for _, p := range participations {
		i := index[p.ExpenseID]
		expenses[i].Participations = append(expenses[i].Participations, p)
	}
	return nil
}

// ReplaceExpense saves an edited expense and regenerates its participations.
func (s *SQLiteStore) ReplaceExpense(ctx context.Context, expense *models.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureUnsettled(ctx, tx, expense.ID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE expenses
			 SET title = ?, description = ?, amount = ?, category = ?, payer_id = ?,
			     split_method = ?, expense_date = ?, updated_at = ?
			 WHERE id = ?`,
			expense.Title, expense.Description, expense.Amount.StringFixed(2), expense.Category,
			expense.PayerID, string(expense.SplitMethod), expense.ExpenseDate, expense.UpdatedAt,
			expense.ID,
		)
		if err != nil {
			return mapError(err, "update expense")
		}
		if err := requireAffected(res, "update expense"); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM participations WHERE expense_id = ?`, expense.ID); err != nil {
			return fmt.Errorf("failed to delete participations: %w", err)
		}
		return insertParticipations(ctx, tx, expense.Participations)
	})
}

// DeleteExpense removes an expense; participations are removed by cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureUnsettled(ctx, tx, expenseID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return requireAffected(res, "delete expense")
	})
}

func ensureUnsettled(ctx context.Context, tx *sql.Tx, expenseID string) error {
	var paid int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participations WHERE expense_id = ? AND paid = 1`, expenseID,
	).Scan(&paid)
	if err != nil {
		return fmt.Errorf("failed to check settled participations: %w", err)
	}
	if paid > 0 {
		return fmt.Errorf("expense %s has %d settled participations: %w", expenseID, paid, storage.ErrConflict)
	}
	return nil
}

// SettleParticipation flips a participation to paid and records the settlement.
// The update only matches unpaid rows, so a concurrent second settle fails
// with ErrConflict instead of writing a second settlement.
func (s *SQLiteStore) SettleParticipation(ctx context.Context, participationID string, settlement *models.Settlement) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE participations SET paid = 1, method = ?, settled_at = ?
			 WHERE id = ? AND paid = 0`,
			string(settlement.Method), settlement.CreatedAt, participationID,
		)
		if err != nil {
			return fmt.Errorf("failed to settle participation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to settle participation: %w", err)
		}
		if n == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM participations WHERE id = ?`, participationID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to look up participation: %w", err)
			}
			if exists == 0 {
				return fmt.Errorf("participation %s: %w", participationID, storage.ErrNotFound)
			}
			return fmt.Errorf("participation %s already settled: %w", participationID, storage.ErrConflict)
		}

		return insertSettlement(ctx, tx, settlement)
	})
}

