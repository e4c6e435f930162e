package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

// CreateGroup persists a new group and its initial memberships.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, description, created_by, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			group.ID, group.Name, group.Description, group.CreatedBy,
			boolToInt(group.Active), group.CreatedAt, group.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert group")
		}

		for _, m := range group.Members {
			if err := saveMembership(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including every membership.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, active, created_at, updated_at
		 FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy,
		&group.Active, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "get group")
	}

	members, err := s.listMemberships(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

func (s *SQLiteStore) listMemberships(ctx context.Context, groupID string) ([]models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, role, active, joined_at
		 FROM group_memberships WHERE group_id = ?
		 ORDER BY joined_at, user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.Active, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// ListGroupsForUser returns the active groups the user actively belongs to.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id
		 FROM groups g
		 JOIN group_memberships m ON m.group_id = g.id
		 WHERE m.user_id = ? AND m.active = 1 AND g.active = 1
		 ORDER BY g.updated_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group ID: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// UpdateGroup saves a group's name, description and active flag.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = ?, description = ?, active = ?, updated_at = ? WHERE id = ?`,
		group.Name, group.Description, boolToInt(group.Active), group.UpdatedAt, group.ID,
	)
	if err != nil {
		return mapError(err, "update group")
	}
	return requireAffected(res, "update group")
}

// SaveMembership inserts or updates a membership.
func (s *SQLiteStore) SaveMembership(ctx context.Context, membership models.Membership) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveMembership(ctx, tx, membership)
	})
}

func saveMembership(ctx context.Context, tx *sql.Tx, m models.Membership) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO group_memberships (group_id, user_id, role, active, joined_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO UPDATE SET
		   role = excluded.role,
		   active = excluded.active,
		   joined_at = excluded.joined_at`,
		m.GroupID, m.UserID, string(m.Role), boolToInt(m.Active), m.JoinedAt,
	)
	if err != nil {
		return mapError(err, "save membership")
	}
	return nil
}
