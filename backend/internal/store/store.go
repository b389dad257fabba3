// Package store defines the persistence contract shared by the Neo4j,
// PostgreSQL and in-memory backends.
//
// Implementations enforce uniqueness themselves and report violations as
// conflict errors from backend/pkg/errors naming the field: "email" and
// "username" for users, "relation" for connections. Missing or foreign-owned
// records are reported as not-found errors.
package store

import (
	"context"

	"growth-graph/backend/internal/domain"
)

// Users persists accounts
type Users interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// PatchUser sets the non-nil fields of patch and returns the stored user.
	PatchUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

// Achievements persists achievements
type Achievements interface {
	CreateAchievement(ctx context.Context, a *domain.Achievement) error
	// ListAchievements returns achievements ordered by date, then creation time.
	ListAchievements(ctx context.Context, f domain.Filter) ([]domain.Achievement, error)
	GetAchievement(ctx context.Context, ownerID, id string) (*domain.Achievement, error)
	UpdateAchievement(ctx context.Context, a *domain.Achievement) error
	DeleteAchievement(ctx context.Context, ownerID, id string) error
	// CountOwnedAchievements counts how many of ids exist and belong to ownerID.
	CountOwnedAchievements(ctx context.Context, ownerID string, ids []string) (int, error)
}

// Connections persists connections
type Connections interface {
	CreateConnection(ctx context.Context, c *domain.Connection) error
	// ListConnections returns connections ordered by creation time.
	ListConnections(ctx context.Context, f domain.Filter) ([]domain.Connection, error)
	DeleteConnection(ctx context.Context, ownerID, id string) error
	// DeleteConnectionsTouching removes every connection of ownerID whose
	// source or target is achievementID and returns how many were removed.
	DeleteConnectionsTouching(ctx context.Context, ownerID, achievementID string) (int, error)
}

// Store is the full persistence contract
type Store interface {
	Users
	Achievements
	Connections
	Close(ctx context.Context) error
}
