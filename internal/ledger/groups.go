package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/models"
)

const (
	maxGroupNameLength   = 100
	maxDescriptionLength = 500
)

func validateGroupDetails(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return "", "", apperr.Validation("group name is required")
	}
	if len(name) > maxGroupNameLength {
		return "", "", apperr.Validation("group name must be at most %d characters", maxGroupNameLength)
	}
	if len(description) > maxDescriptionLength {
		return "", "", apperr.Validation("description must be at most %d characters", maxDescriptionLength)
	}
	return name, description, nil
}

// CreateGroup creates a group with creatorID as its first admin and
// memberIDs as regular members. Duplicate IDs are ignored.
func (l *Ledger) CreateGroup(ctx context.Context, creatorID, name, description string, memberIDs []string) (*models.Group, error) {
	name, description, err := validateGroupDetails(name, description)
	if err != nil {
		return nil, err
	}

	now := l.now().Unix()
	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	seen := map[string]bool{creatorID: true}
	group.Members = append(group.Members, models.Membership{
		GroupID: group.ID, UserID: creatorID, Role: models.RoleAdmin, Active: true, JoinedAt: now,
	})
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		group.Members = append(group.Members, models.Membership{
			GroupID: group.ID, UserID: id, Role: models.RoleMember, Active: true, JoinedAt: now,
		})
	}

	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return group, nil
}

// UpdateGroup changes a group's name and description.
func (l *Ledger) UpdateGroup(ctx context.Context, groupID, name, description string) (*models.Group, error) {
	name, description, err := validateGroupDetails(name, description)
	if err != nil {
		return nil, err
	}
	group, err := l.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Active {
		return nil, apperr.Validation("group %s is archived", groupID)
	}

	group.Name = name
	group.Description = description
	group.UpdatedAt = l.now().Unix()
	if err := l.store.UpdateGroup(ctx, group); err != nil {
		return nil, translate(err, "group %s not found", groupID)
	}
	return group, nil
}

// ArchiveGroup deactivates a group. Its history stays readable but no new
// expenses can be added.
func (l *Ledger) ArchiveGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := l.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Active {
		return group, nil
	}

	group.Active = false
	group.UpdatedAt = l.now().Unix()
	if err := l.store.UpdateGroup(ctx, group); err != nil {
		return nil, translate(err, "group %s not found", groupID)
	}

	slog.Info("Group archived", "group_id", groupID)
	return group, nil
}

// AddMember adds userID to the group, or reactivates a former membership.
func (l *Ledger) AddMember(ctx context.Context, groupID, userID string, role models.Role) (*models.Group, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}

	group, err := l.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Active {
		return nil, apperr.Validation("group %s is archived", groupID)
	}
	if group.IsMember(userID) {
		return nil, apperr.AlreadyExists("user is already a member of the group")
	}

	membership := models.Membership{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		Active:   true,
		JoinedAt: l.now().Unix(),
	}
	for _, m := range group.Members {
		if m.UserID == userID {
			membership.JoinedAt = m.JoinedAt
		}
	}

	if err := l.store.SaveMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	slog.Info("Member added", "group_id", groupID, "user_id", userID, "role", role)
	return l.Group(ctx, groupID)
}

// RemoveMember deactivates userID's membership. The last admin cannot be
// removed, nor can a member who still owes or is owed money.
func (l *Ledger) RemoveMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := l.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	membership, ok := group.Member(userID)
	if !ok {
		return nil, apperr.NotFound("user is not a member of the group")
	}
	if membership.Role == models.RoleAdmin && group.AdminCount() == 1 {
		return nil, apperr.Conflict("cannot remove the last admin of the group")
	}

	open, err := l.HasOpenBalance(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperr.Conflict("member has unsettled expenses in the group")
	}

	membership.Active = false
	if err := l.store.SaveMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", userID)
	return l.Group(ctx, groupID)
}

// SetMemberRole changes an active member's role. The last admin cannot be demoted.
func (l *Ledger) SetMemberRole(ctx context.Context, groupID, userID string, role models.Role) (*models.Group, error) {
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}
	group, err := l.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	membership, ok := group.Member(userID)
	if !ok {
		return nil, apperr.NotFound("user is not a member of the group")
	}
	if membership.Role == role {
		return group, nil
	}
	if membership.Role == models.RoleAdmin && group.AdminCount() == 1 {
		return nil, apperr.Conflict("cannot demote the last admin of the group")
	}

	membership.Role = role
	if err := l.store.SaveMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	slog.Info("Member role changed", "group_id", groupID, "user_id", userID, "role", role)
	return l.Group(ctx, groupID)
}

// GroupsForUser returns the active groups userID belongs to.
func (l *Ledger) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := l.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
