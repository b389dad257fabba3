package service

import (
	"context"
	"time"

	"growth-graph/backend/internal/domain"
	"growth-graph/backend/internal/store"
	apperrors "growth-graph/backend/pkg/errors"
)

// ConnectionInput is the create payload
type ConnectionInput struct {
	FromID    string              `json:"from_achievement_id" binding:"required"`
	ToID      string              `json:"to_achievement_id" binding:"required"`
	Relation  domain.RelationKind `json:"relation_type" binding:"required,oneof=led_to enabled applied_in resulted_in"`
	StoryText string              `json:"story_text"`
}

// Connections manages an owner's connections
type Connections struct {
	achievements store.Achievements
	connections  store.Connections
	now          func() time.Time
	newID        func() string
}

// Create validates the edge, checks that the caller owns both endpoints and
// stores it. A duplicate (owner, from, to, relation) comes back from the
// store as a conflict.
func (s *Connections) Create(ctx context.Context, ownerID string, in ConnectionInput) (*domain.Connection, error) {
	c := &domain.Connection{
		ID:        s.newID(),
		OwnerID:   ownerID,
		FromID:    in.FromID,
		ToID:      in.ToID,
		Relation:  in.Relation,
		StoryText: in.StoryText,
		CreatedAt: s.now().UTC(),
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	owned, err := s.achievements.CountOwnedAchievements(ctx, ownerID, []string{c.FromID, c.ToID})
	if err != nil {
		return nil, err
	}
	if owned != 2 {
		return nil, apperrors.NewForbidden("one or more achievements do not belong to current user")
	}

	if err := s.connections.CreateConnection(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the owner's connections by creation time.
func (s *Connections) List(ctx context.Context, ownerID string) ([]domain.Connection, error) {
	return s.connections.ListConnections(ctx, domain.Owned(ownerID))
}

func (s *Connections) Delete(ctx context.Context, ownerID, id string) error {
	return s.connections.DeleteConnection(ctx, ownerID, id)
}
