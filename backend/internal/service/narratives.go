package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"growth-graph/backend/internal/domain"
	"growth-graph/backend/internal/narrative"
	"growth-graph/backend/internal/store"
)

// Narratives loads graph data and hands it to the synthesizer
type Narratives struct {
	users        store.Users
	achievements store.Achievements
	connections  store.Connections
	now          func() time.Time
}

// ForOwner synthesizes the owner's narrative, with the stored custom
// narrative taking precedence over the generated story.
func (s *Narratives) ForOwner(ctx context.Context, ownerID string) (narrative.Narrative, error) {
	var override string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.users.GetUserByID(gctx, ownerID)
		if err != nil {
			return err
		}
		override = user.CustomNarrative
		return nil
	})

	var achievements []domain.Achievement
	var connections []domain.Connection
	s.load(gctx, g, domain.Owned(ownerID), &achievements, &connections)

	if err := g.Wait(); err != nil {
		return narrative.Narrative{}, err
	}
	return narrative.Synthesize(achievements, connections, override), nil
}

// SaveCustom stores the trimmed story as the owner's override and returns it.
func (s *Narratives) SaveCustom(ctx context.Context, ownerID, story string) (string, error) {
	story = strings.TrimSpace(story)
	user, err := s.users.PatchUser(ctx, ownerID, domain.UserPatch{
		CustomNarrative: &story,
		UpdatedAt:       s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return user.CustomNarrative, nil
}

// ClearCustom removes the owner's override.
func (s *Narratives) ClearCustom(ctx context.Context, ownerID string) error {
	_, err := s.SaveCustom(ctx, ownerID, "")
	return err
}

// PublicFeed synthesizes over every owner's data with no override.
func (s *Narratives) PublicFeed(ctx context.Context) (narrative.Narrative, error) {
	return s.scoped(ctx, domain.Filter{}, "")
}

func (s *Narratives) scoped(ctx context.Context, f domain.Filter, override string) (narrative.Narrative, error) {
	var achievements []domain.Achievement
	var connections []domain.Connection

	g, gctx := errgroup.WithContext(ctx)
	s.load(gctx, g, f, &achievements, &connections)
	if err := g.Wait(); err != nil {
		return narrative.Narrative{}, err
	}
	return narrative.Synthesize(achievements, connections, override), nil
}

func (s *Narratives) load(ctx context.Context, g *errgroup.Group, f domain.Filter, achievements *[]domain.Achievement, connections *[]domain.Connection) {
	g.Go(func() error {
		list, err := s.achievements.ListAchievements(ctx, f)
		*achievements = list
		return err
	})
	g.Go(func() error {
		list, err := s.connections.ListConnections(ctx, f)
		*connections = list
		return err
	})
}
