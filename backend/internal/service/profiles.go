package service

import (
	"context"

	"growth-graph/backend/internal/domain"
	"growth-graph/backend/internal/narrative"
	"growth-graph/backend/internal/store"
	apperrors "growth-graph/backend/pkg/errors"
)

// Profiles serves read-only public views, addressed by handle or unscoped
type Profiles struct {
	users        store.Users
	achievements store.Achievements
	connections  store.Connections
	narratives   *Narratives
}

// Resolve maps a handle to its user, case-insensitively.
func (s *Profiles) Resolve(ctx context.Context, username string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, apperrors.NewNotFound("profile", username)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("profile", username)
		}
		return nil, err
	}
	return user, nil
}

func (s *Profiles) Profile(ctx context.Context, username string) (domain.PublicProfile, error) {
	user, err := s.Resolve(ctx, username)
	if err != nil {
		return domain.PublicProfile{}, err
	}
	return user.PublicProfile(), nil
}

func (s *Profiles) Achievements(ctx context.Context, username string) ([]domain.Achievement, error) {
	user, err := s.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.achievements.ListAchievements(ctx, domain.Filter{OwnerID: user.ID, Limit: ProfileAchievementLimit})
}

func (s *Profiles) Connections(ctx context.Context, username string) ([]domain.Connection, error) {
	user, err := s.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.connections.ListConnections(ctx, domain.Filter{OwnerID: user.ID, Limit: ProfileConnectionLimit})
}

// Narrative synthesizes the profile owner's narrative with their custom
// narrative as the override.
func (s *Profiles) Narrative(ctx context.Context, username string) (narrative.Narrative, error) {
	user, err := s.Resolve(ctx, username)
	if err != nil {
		return narrative.Narrative{}, err
	}
	return s.narratives.scoped(ctx, domain.Owned(user.ID), user.CustomNarrative)
}

// FeedAchievements lists achievements across every owner.
func (s *Profiles) FeedAchievements(ctx context.Context) ([]domain.Achievement, error) {
	return s.achievements.ListAchievements(ctx, domain.Filter{Limit: PublicAchievementLimit})
}

// FeedConnections lists connections across every owner.
func (s *Profiles) FeedConnections(ctx context.Context) ([]domain.Connection, error) {
	return s.connections.ListConnections(ctx, domain.Filter{Limit: PublicConnectionLimit})
}
