package membership_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamboard/internal/database/dbtest"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/team"
)

func setupTeam(t *testing.T) (membership.Store, *team.Team, func(email string) uuid.UUID) {
	t.Helper()
	pool := dbtest.Pool(t)

	tm := &team.Team{Name: "core", OwnerID: dbtest.InsertUser(t, pool, "owner@example.com")}
	require.NoError(t, team.NewRepository(pool).Create(context.Background(), tm))

	newUser := func(email string) uuid.UUID { return dbtest.InsertUser(t, pool, email) }
	return membership.NewStore(pool), tm, newUser
}

func TestInsert_DuplicateIsAlreadyMember(t *testing.T) {
	store, tm, newUser := setupTeam(t)
	ctx := context.Background()
	userID := newUser("m@example.com")

	first := &membership.Member{TeamID: tm.ID, UserID: userID, Role: membership.RoleMember}
	require.NoError(t, store.Insert(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	err := store.Insert(ctx, &membership.Member{TeamID: tm.ID, UserID: userID, Role: membership.RoleViewer})
	assert.ErrorIs(t, err, membership.ErrAlreadyMember)
}

func TestLookup(t *testing.T) {
	store, tm, newUser := setupTeam(t)
	ctx := context.Background()

	role, err := store.Lookup(ctx, tm.ID, tm.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, membership.RoleOwner, role)

	_, err = store.Lookup(ctx, tm.ID, newUser("stranger@example.com"))
	assert.ErrorIs(t, err, membership.ErrNotMember)
}

func TestUpdateRoleAndDelete_SkipOwnerRow(t *testing.T) {
	store, tm, _ := setupTeam(t)
	ctx := context.Background()

	members, err := store.ListByTeam(ctx, tm.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	ownerRow := members[0]
	require.NotNil(t, ownerRow.User)
	assert.Equal(t, "owner@example.com", ownerRow.User.Email)

	_, err = store.UpdateRole(ctx, tm.ID, ownerRow.ID, membership.RoleAdmin)
	assert.ErrorIs(t, err, membership.ErrMemberNotFound)
	assert.ErrorIs(t, store.Delete(ctx, tm.ID, ownerRow.ID), membership.ErrMemberNotFound)
}

func TestUpdateRoleAndDelete_ScopedToTeam(t *testing.T) {
	store, tm, newUser := setupTeam(t)
	ctx := context.Background()

	m := &membership.Member{TeamID: tm.ID, UserID: newUser("m@example.com"), Role: membership.RoleMember}
	require.NoError(t, store.Insert(ctx, m))

	_, err := store.UpdateRole(ctx, uuid.New(), m.ID, membership.RoleAdmin)
	assert.ErrorIs(t, err, membership.ErrMemberNotFound)

	updated, err := store.UpdateRole(ctx, tm.ID, m.ID, membership.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, membership.RoleAdmin, updated.Role)

	require.NoError(t, store.Delete(ctx, tm.ID, m.ID))
	_, err = store.GetByID(ctx, tm.ID, m.ID)
	assert.ErrorIs(t, err, membership.ErrMemberNotFound)
}
