package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

func TestStoreError_UniqueViolation(t *testing.T) {
	cases := map[string]string{
		"users_email_key":      "email",
		"users_username_key":   "username",
		"connections_edge_key": "relation",
		"achievements_pkey":    "id",
	}
	for constraint, field := range cases {
		err := storeError("thing", "insert", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})
		require.True(t, apperrors.IsConflict(err), constraint)
		assert.Equal(t, field, apperrors.ConflictField(err))
	}
}

func TestStoreError_Other(t *testing.T) {
	err := storeError("thing", "insert", errors.New("connection reset"))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStore))
	assert.Equal(t, "internal server error", apperrors.PublicMessage(err))
	assert.Contains(t, err.Error(), "db error: connection reset")
}

func TestLimitClause(t *testing.T) {
	assert.Equal(t, "", limitClause(0))
	assert.Equal(t, " LIMIT 250", limitClause(250))
}

// Integration tests below require PostgreSQL. Set POSTGRES_TEST_URL.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	return s
}

func seedUser(t *testing.T, s *Store) *domain.User {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	now := time.Now().UTC()
	u := &domain.User{
		ID: uuid.NewString(), Name: "Test User", Username: "pg_" + suffix,
		Email: "pg_" + suffix + "@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateUser(ctx, u))
	t.Cleanup(func() {
		_, _ = s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u
}

func seedAchievement(t *testing.T, s *Store, ownerID, title, date string) *domain.Achievement {
	t.Helper()
	d, err := domain.ParseDate(date)
	require.NoError(t, err)
	now := time.Now().UTC()
	a := &domain.Achievement{
		ID: uuid.NewString(), OwnerID: ownerID, Title: title, Category: domain.CategoryProject,
		Description: title, Date: d, Skills: []string{"sql"}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateAchievement(context.Background(), a))
	return a
}

func TestUsers_Uniqueness(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	dup := *u
	dup.ID = uuid.NewString()
	dup.Username = ""
	err := s.CreateUser(ctx, &dup)
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "email", apperrors.ConflictField(err))

	exists, err := s.UsernameExists(ctx, u.Username)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.GetUserByUsername(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAchievements_RoundTripAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	later := seedAchievement(t, s, u.ID, "Later", "2024-05-01")
	earlier := seedAchievement(t, s, u.ID, "Earlier", "2023-01-15")

	list, err := s.ListAchievements(ctx, domain.Owned(u.ID))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)
	assert.Equal(t, []string{"sql"}, list[0].Skills)
	assert.Equal(t, []string{}, list[0].Tags)

	n, err := s.CountOwnedAchievements(ctx, u.ID, []string{earlier.ID, later.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	other := seedUser(t, s)
	_, err = s.GetAchievement(ctx, other.ID, earlier.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConnections_EdgeKeyAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	a := seedAchievement(t, s, u.ID, "A", "2023-01-01")
	b := seedAchievement(t, s, u.ID, "B", "2023-02-01")

	c := &domain.Connection{
		ID: uuid.NewString(), OwnerID: u.ID, FromID: a.ID, ToID: b.ID,
		Relation: domain.RelationLedTo, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateConnection(ctx, c))

	dup := *c
	dup.ID = uuid.NewString()
	err := s.CreateConnection(ctx, &dup)
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "relation", apperrors.ConflictField(err))

	dup.ID = uuid.NewString()
	dup.Relation = domain.RelationEnabled
	require.NoError(t, s.CreateConnection(ctx, &dup))

	removed, err := s.DeleteConnectionsTouching(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	list, err := s.ListConnections(ctx, domain.Owned(u.ID))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteAchievement_RemovesConnectionsInSameTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	a := seedAchievement(t, s, u.ID, "A", "2023-01-01")
	b := seedAchievement(t, s, u.ID, "B", "2023-02-01")

	require.NoError(t, s.CreateConnection(ctx, &domain.Connection{
		ID: uuid.NewString(), OwnerID: u.ID, FromID: a.ID, ToID: b.ID,
		Relation: domain.RelationLedTo, CreatedAt: time.Now().UTC(),
	}))

	// a missing achievement rolls back, leaving the connection in place
	err := s.DeleteAchievement(ctx, u.ID, uuid.NewString())
	assert.True(t, apperrors.IsNotFound(err))
	list, err := s.ListConnections(ctx, domain.Owned(u.ID))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteAchievement(ctx, u.ID, b.ID))

	list, err = s.ListConnections(ctx, domain.Owned(u.ID))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.GetAchievement(ctx, u.ID, b.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPatchUser_OnlyTouchesGivenFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	other := seedUser(t, s)

	story := "My own words."
	_, err := s.PatchUser(ctx, u.ID, domain.UserPatch{CustomNarrative: &story, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)

	bio := "compilers"
	got, err := s.PatchUser(ctx, u.ID, domain.UserPatch{Bio: &bio, UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, "compilers", got.Bio)
	assert.Equal(t, "My own words.", got.CustomNarrative)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.Name, got.Name)

	_, err = s.PatchUser(ctx, u.ID, domain.UserPatch{Username: &other.Username, UpdatedAt: time.Now().UTC()})
	assert.Equal(t, "username", apperrors.ConflictField(err))

	_, err = s.PatchUser(ctx, uuid.NewString(), domain.UserPatch{Bio: &bio, UpdatedAt: time.Now().UTC()})
	assert.True(t, apperrors.IsNotFound(err))
}
