package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

func insertSettlement(ctx context.Context, tx *sql.Tx, settlement *models.Settlement) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, expense_id, participation_id, from_user_id, to_user_id,
		                          amount, method, created_at, created_by, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.ExpenseID, settlement.ParticipationID,
		settlement.FromUserID, settlement.ToUserID, settlement.Amount.StringFixed(2),
		string(settlement.Method), settlement.CreatedAt, settlement.CreatedBy, nullString(settlement.Note),
	)
	if err != nil {
		return mapError(err, "insert settlement")
	}
	return nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, expense_id, participation_id, from_user_id, to_user_id,
		        amount, method, created_at, created_by, note
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var note sql.NullString

		if err := rows.Scan(&settlement.ID, &settlement.GroupID, &settlement.ExpenseID,
			&settlement.ParticipationID, &settlement.FromUserID, &settlement.ToUserID,
			&settlement.Amount, &settlement.Method, &settlement.CreatedAt, &settlement.CreatedBy, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		if note.Valid {
			settlement.Note = note.String
		}

		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
