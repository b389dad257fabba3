package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	"growth-graph/backend/internal/store"
	"growth-graph/backend/pkg/logger"
)

// AchievementInput is the create payload. Date is YYYY-MM-DD or RFC 3339.
type AchievementInput struct {
	Title       string          `json:"title" yaml:"title" binding:"required"`
	Category    domain.Category `json:"category" yaml:"category" binding:"required,oneof=course project certificate experience award"`
	Description string          `json:"description" yaml:"description" binding:"required"`
	Date        string          `json:"date" yaml:"date" binding:"required"`
	Skills      []string        `json:"skills" yaml:"skills"`
	ProofLink   string          `json:"proof_link" yaml:"proof_link"`
	Tags        []string        `json:"tags" yaml:"tags"`
}

// AchievementPatch changes the non-nil fields of an achievement
type AchievementPatch struct {
	Title       *string          `json:"title"`
	Category    *domain.Category `json:"category"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	Skills      *[]string        `json:"skills"`
	ProofLink   *string          `json:"proof_link"`
	Tags        *[]string        `json:"tags"`
}

// Achievements manages an owner's achievements
type Achievements struct {
	achievements store.Achievements
	connections  store.Connections
	now          func() time.Time
	newID        func() string
}

func (s *Achievements) Create(ctx context.Context, ownerID string, in AchievementInput) (*domain.Achievement, error) {
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &domain.Achievement{
		ID:          s.newID(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Date:        date,
		Skills:      in.Skills,
		ProofLink:   in.ProofLink,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.achievements.CreateAchievement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the owner's achievements by date, then creation time.
func (s *Achievements) List(ctx context.Context, ownerID string) ([]domain.Achievement, error) {
	return s.achievements.ListAchievements(ctx, domain.Owned(ownerID))
}

// Update applies patch and re-validates the whole record.
func (s *Achievements) Update(ctx context.Context, ownerID, id string, patch AchievementPatch) (*domain.Achievement, error) {
	a, err := s.achievements.GetAchievement(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Category != nil {
		a.Category = *patch.Category
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Date != nil {
		if a.Date, err = domain.ParseDate(*patch.Date); err != nil {
			return nil, err
		}
	}
	if patch.Skills != nil {
		a.Skills = *patch.Skills
	}
	if patch.ProofLink != nil {
		a.ProofLink = *patch.ProofLink
	}
	if patch.Tags != nil {
		a.Tags = *patch.Tags
	}
	a.UpdatedAt = s.now().UTC()

	a.Normalize()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.achievements.UpdateAchievement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the achievement and every connection that starts or ends
// at it, returning how many connections went with it. Connections are
// removed first so a failure never leaves edges pointing at nothing.
func (s *Achievements) Delete(ctx context.Context, ownerID, id string) (int, error) {
	if _, err := s.achievements.GetAchievement(ctx, ownerID, id); err != nil {
		return 0, err
	}

	removed, err := s.connections.DeleteConnectionsTouching(ctx, ownerID, id)
	if err != nil {
		return 0, err
	}
	if err := s.achievements.DeleteAchievement(ctx, ownerID, id); err != nil {
		return removed, err
	}

	logger.Get().Info("Achievement deleted",
		zap.String("owner_id", ownerID),
		zap.String("achievement_id", id),
		zap.Int("connections_removed", removed),
	)
	return removed, nil
}
