package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func putAchievement(t *testing.T, m *Memory, id, owner, date string, created time.Time) {
	t.Helper()
	require.NoError(t, m.CreateAchievement(context.Background(), &domain.Achievement{
		ID: id, OwnerID: owner, Title: id, Category: domain.CategoryProject,
		Description: id, Date: day(date), CreatedAt: created, UpdatedAt: created,
	}))
}

func TestMemory_UserUniqueness(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateUser(ctx, &domain.User{ID: "u1", Email: "a@example.com", Username: "alice"}))

	err := m.CreateUser(ctx, &domain.User{ID: "u2", Email: "a@example.com", Username: "other"})
	assert.Equal(t, "email", apperrors.ConflictField(err))

	err = m.CreateUser(ctx, &domain.User{ID: "u3", Email: "b@example.com", Username: "alice"})
	assert.Equal(t, "username", apperrors.ConflictField(err))

	// users without a handle do not collide with each other
	require.NoError(t, m.CreateUser(ctx, &domain.User{ID: "u4", Email: "c@example.com"}))
	require.NoError(t, m.CreateUser(ctx, &domain.User{ID: "u5", Email: "d@example.com"}))

	exists, err := m.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = m.UsernameExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemory_PatchUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateUser(ctx, &domain.User{ID: "u1", Email: "a@example.com", Username: "alice"}))
	require.NoError(t, m.CreateUser(ctx, &domain.User{ID: "u2", Email: "b@example.com", Name: "Bob", Bio: "old", CustomNarrative: "mine"}))

	bio := "new"
	updated, err := m.PatchUser(ctx, "u2", domain.UserPatch{Bio: &bio, UpdatedAt: base})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Bio)
	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "mine", updated.CustomNarrative)
	assert.Equal(t, base, updated.UpdatedAt)

	taken := "alice"
	_, err = m.PatchUser(ctx, "u2", domain.UserPatch{Username: &taken})
	assert.Equal(t, "username", apperrors.ConflictField(err))

	own := "alice"
	_, err = m.PatchUser(ctx, "u1", domain.UserPatch{Username: &own})
	assert.NoError(t, err)

	_, err = m.PatchUser(ctx, "missing", domain.UserPatch{Bio: &bio})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemory_ListAchievementsOrderAndScope(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	putAchievement(t, m, "late", "u1", "2024-01-01", base)
	putAchievement(t, m, "tie-second", "u1", "2023-06-01", base.Add(time.Hour))
	putAchievement(t, m, "tie-first", "u1", "2023-06-01", base)
	putAchievement(t, m, "foreign", "u2", "2020-01-01", base)

	list, err := m.ListAchievements(ctx, domain.Owned("u1"))
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"tie-first", "tie-second", "late"}, ids)

	all, err := m.ListAchievements(ctx, domain.Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "foreign", all[0].ID)
}

func TestMemory_AchievementOwnership(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	putAchievement(t, m, "a", "u1", "2023-01-01", base)

	_, err := m.GetAchievement(ctx, "u2", "a")
	assert.True(t, apperrors.IsNotFound(err))

	err = m.DeleteAchievement(ctx, "u2", "a")
	assert.True(t, apperrors.IsNotFound(err))

	n, err := m.CountOwnedAchievements(ctx, "u1", []string{"a", "a", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemory_ReturnedAchievementsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateAchievement(ctx, &domain.Achievement{
		ID: "a", OwnerID: "u1", Date: day("2023-01-01"), Skills: []string{"go"},
	}))

	got, err := m.GetAchievement(ctx, "u1", "a")
	require.NoError(t, err)
	got.Skills[0] = "mutated"

	again, err := m.GetAchievement(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Skills)
}

func TestMemory_ConnectionEdgeKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c := &domain.Connection{ID: "c1", OwnerID: "u1", FromID: "a", ToID: "b", Relation: domain.RelationLedTo, CreatedAt: base}
	require.NoError(t, m.CreateConnection(ctx, c))

	dup := *c
	dup.ID = "c2"
	err := m.CreateConnection(ctx, &dup)
	assert.Equal(t, "relation", apperrors.ConflictField(err))

	dup.ID = "c3"
	dup.Relation = domain.RelationEnabled
	require.NoError(t, m.CreateConnection(ctx, &dup))

	list, err := m.ListConnections(ctx, domain.Owned("u1"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c3", list[1].ID)
}

func TestMemory_DeleteConnectionsTouching(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	edges := []domain.Connection{
		{ID: "c1", OwnerID: "u1", FromID: "a", ToID: "b", Relation: domain.RelationLedTo},
		{ID: "c2", OwnerID: "u1", FromID: "c", ToID: "a", Relation: domain.RelationEnabled},
		{ID: "c3", OwnerID: "u1", FromID: "b", ToID: "c", Relation: domain.RelationLedTo},
		{ID: "c4", OwnerID: "u2", FromID: "a", ToID: "z", Relation: domain.RelationLedTo},
	}
	for i := range edges {
		require.NoError(t, m.CreateConnection(ctx, &edges[i]))
	}

	removed, err := m.DeleteConnectionsTouching(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := m.ListConnections(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "c3", left[0].ID)
	assert.Equal(t, "c4", left[1].ID)

	err = m.DeleteConnection(ctx, "u1", "c4")
	assert.True(t, apperrors.IsNotFound(err))
}
