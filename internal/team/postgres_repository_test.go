package team_test

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

func TestCreate_AddsOwnerMembership(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := team.NewRepository(pool)
	members := membership.NewStore(pool)
	ctx := context.Background()

	ownerID := dbtest.InsertUser(t, pool, "owner@example.com")
	tm := &team.Team{Name: "core", OwnerID: ownerID}
	require.NoError(t, repo.Create(ctx, tm))

	assert.NotEqual(t, uuid.Nil, tm.ID)
	assert.False(t, tm.CreatedAt.IsZero())

	role, err := members.Lookup(ctx, tm.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, membership.RoleOwner, role)
}

func TestListForUser_OnlyMemberTeams(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := team.NewRepository(pool)
	ctx := context.Background()

	alice := dbtest.InsertUser(t, pool, "alice@example.com")
	bob := dbtest.InsertUser(t, pool, "bob@example.com")

	require.NoError(t, repo.Create(ctx, &team.Team{Name: "a", OwnerID: alice}))
	require.NoError(t, repo.Create(ctx, &team.Team{Name: "b", OwnerID: bob}))

	teams, err := repo.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "a", teams[0].Name)
}

func TestUpdate_PartialFields(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := team.NewRepository(pool)
	ctx := context.Background()

	desc := "before"
	tm := &team.Team{Name: "core", Description: &desc, OwnerID: dbtest.InsertUser(t, pool, "o@example.com")}
	require.NoError(t, repo.Create(ctx, tm))

	name := "renamed"
	updated, err := repo.Update(ctx, tm.ID, team.UpdateFields{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "before", *updated.Description)
}

func TestDelete_CascadesMembership(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := team.NewRepository(pool)
	members := membership.NewStore(pool)
	ctx := context.Background()

	ownerID := dbtest.InsertUser(t, pool, "o@example.com")
	tm := &team.Team{Name: "core", OwnerID: ownerID}
	require.NoError(t, repo.Create(ctx, tm))

	require.NoError(t, repo.Delete(ctx, tm.ID))

	_, err := repo.GetByID(ctx, tm.ID)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
	_, err = members.Lookup(ctx, tm.ID, ownerID)
	assert.ErrorIs(t, err, membership.ErrNotMember)

	assert.ErrorIs(t, repo.Delete(ctx, tm.ID), team.ErrTeamNotFound)
}
