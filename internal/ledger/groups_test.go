package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/models"
)

func TestCreateGroup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	group, err := f.ledger.CreateGroup(ctx, f.a, "  Ski Trip ", "Whistler", []string{f.b, f.a, f.b, f.c})
	require.NoError(t, err)
	assert.Equal(t, "Ski Trip", group.Name)
	assert.True(t, group.Active)
	assert.True(t, group.IsAdmin(f.a))
	assert.True(t, group.IsMember(f.b))
	assert.False(t, group.IsAdmin(f.b))
	assert.Len(t, group.Members, 3)

	stored, err := f.ledger.Group(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ActiveMemberIDs(), stored.ActiveMemberIDs())

	groups, err := f.ledger.GroupsForUser(ctx, f.c)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	_, err = f.ledger.CreateGroup(ctx, f.a, " ", "", nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateAndArchiveGroup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	group, err := f.ledger.UpdateGroup(ctx, f.group.ID, "Flat 2", "new flat")
	require.NoError(t, err)
	assert.Equal(t, "Flat 2", group.Name)
	assert.Equal(t, "new flat", group.Description)

	_, err = f.ledger.UpdateGroup(ctx, "missing", "x", "")
	assert.True(t, apperr.IsNotFound(err))

	group, err = f.ledger.ArchiveGroup(ctx, f.group.ID)
	require.NoError(t, err)
	assert.False(t, group.Active)

	groups, err := f.ledger.GroupsForUser(ctx, f.a)
	require.NoError(t, err)
	assert.Empty(t, groups)

	_, err = f.ledger.CreateExpense(ctx, f.a, f.equal(f.a, "10", f.a, f.b))
	assert.True(t, apperr.IsValidation(err))

	_, err = f.ledger.UpdateGroup(ctx, f.group.ID, "Flat 3", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestMembership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// b owes a after this expense.
	_, err := f.ledger.CreateExpense(ctx, f.a, f.equal(f.a, "30", f.a, f.b))
	require.NoError(t, err)

	_, err = f.ledger.RemoveMember(ctx, f.group.ID, f.b)
	assert.True(t, apperr.IsConflict(err), "member with open balance: %v", err)

	group, err := f.ledger.RemoveMember(ctx, f.group.ID, f.c)
	require.NoError(t, err)
	assert.False(t, group.IsMember(f.c))

	_, err = f.ledger.RemoveMember(ctx, f.group.ID, f.c)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.ledger.RemoveMember(ctx, f.group.ID, f.a)
	assert.True(t, apperr.IsConflict(err), "last admin: %v", err)

	_, err = f.ledger.SetMemberRole(ctx, f.group.ID, f.a, models.RoleMember)
	assert.True(t, apperr.IsConflict(err), "last admin demotion: %v", err)

	group, err = f.ledger.AddMember(ctx, f.group.ID, f.c, "")
	require.NoError(t, err)
	assert.True(t, group.IsMember(f.c))

	_, err = f.ledger.AddMember(ctx, f.group.ID, f.c, models.RoleMember)
	assert.True(t, apperr.IsConflict(err))

	_, err = f.ledger.AddMember(ctx, f.group.ID, f.c, models.Role("owner"))
	assert.True(t, apperr.IsValidation(err))

	group, err = f.ledger.SetMemberRole(ctx, f.group.ID, f.c, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, group.IsAdmin(f.c))

	group, err = f.ledger.SetMemberRole(ctx, f.group.ID, f.a, models.RoleMember)
	require.NoError(t, err)
	assert.False(t, group.IsAdmin(f.a))
	assert.Equal(t, 1, group.AdminCount())
}
