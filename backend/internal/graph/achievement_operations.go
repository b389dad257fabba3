package graph

import (
	"context"

	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

// ============================================================================
// Achievement Operations
// ============================================================================

// CreateAchievement creates an achievement node linked to its owner
func (r *Repository) CreateAchievement(ctx context.Context, a *domain.Achievement) error {
	query := `
		MATCH (u:User {id: $ownerID})
		CREATE (u)-[:OWNS]->(a:Achievement {
			id: $id,
			owner_id: $ownerID,
			title: $title,
			category: $category,
			description: $description,
			date: datetime($date),
			skills: $skills,
			proof_link: $proofLink,
			tags: $tags,
			created_at: datetime($createdAt),
			updated_at: datetime($updatedAt)
		})
		RETURN a.id AS id
	`

	records, err := r.write(ctx, query, achievementParams(a))
	if err != nil {
		return storeError("achievement", "create achievement", err)
	}
	if len(records) == 0 {
		return apperrors.NewNotFound("user", a.OwnerID)
	}

	r.logger.Info("Achievement created",
		zap.String("owner_id", a.OwnerID),
		zap.String("achievement_id", a.ID),
	)
	return nil
}

// ListAchievements lists achievements by date then creation time
func (r *Repository) ListAchievements(ctx context.Context, f domain.Filter) ([]domain.Achievement, error) {
	query := `
		MATCH (a:Achievement)
		WHERE $ownerID = '' OR a.owner_id = $ownerID
		RETURN a {.*} AS a
		ORDER BY a.date ASC, a.created_at ASC, a.id ASC
	` + limitClause(f.Limit)

	records, err := r.read(ctx, query, map[string]interface{}{
		"ownerID": f.OwnerID,
		"limit":   int64(f.Limit),
	})
	if err != nil {
		return nil, storeError("achievement", "list achievements", err)
	}

	out := make([]domain.Achievement, 0, len(records))
	for _, record := range records {
		out = append(out, achievementFromMap(getMapFromRecord(record, "a")))
	}
	return out, nil
}

// GetAchievement fetches one achievement of ownerID
func (r *Repository) GetAchievement(ctx context.Context, ownerID, id string) (*domain.Achievement, error) {
	records, err := r.read(ctx, "MATCH (a:Achievement {id: $id, owner_id: $ownerID}) RETURN a {.*} AS a", map[string]interface{}{
		"id":      id,
		"ownerID": ownerID,
	})
	if err != nil {
		return nil, storeError("achievement", "get achievement", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound("achievement", id)
	}
	a := achievementFromMap(getMapFromRecord(records[0], "a"))
	return &a, nil
}

// UpdateAchievement overwrites the mutable achievement properties
func (r *Repository) UpdateAchievement(ctx context.Context, a *domain.Achievement) error {
	query := `
		MATCH (a:Achievement {id: $id, owner_id: $ownerID})
		SET a.title = $title,
		    a.category = $category,
		    a.description = $description,
		    a.date = datetime($date),
		    a.skills = $skills,
		    a.proof_link = $proofLink,
		    a.tags = $tags,
		    a.updated_at = datetime($updatedAt)
		RETURN a.id AS id
	`

	records, err := r.write(ctx, query, achievementParams(a))
	if err != nil {
		return storeError("achievement", "update achievement", err)
	}
	if len(records) == 0 {
		return apperrors.NewNotFound("achievement", a.ID)
	}
	return nil
}

// DeleteAchievement removes an achievement node and any relationships still
// attached to it
func (r *Repository) DeleteAchievement(ctx context.Context, ownerID, id string) error {
	query := `
		MATCH (a:Achievement {id: $id, owner_id: $ownerID})
		WITH a, a.id AS id
		DETACH DELETE a
		RETURN id
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"id":      id,
		"ownerID": ownerID,
	})
	if err != nil {
		return storeError("achievement", "delete achievement", err)
	}
	if len(records) == 0 {
		return apperrors.NewNotFound("achievement", id)
	}

	r.logger.Info("Achievement deleted",
		zap.String("owner_id", ownerID),
		zap.String("achievement_id", id),
	)
	return nil
}

// CountOwnedAchievements counts how many of ids belong to ownerID
func (r *Repository) CountOwnedAchievements(ctx context.Context, ownerID string, ids []string) (int, error) {
	query := `
		MATCH (a:Achievement)
		WHERE a.owner_id = $ownerID AND a.id IN $ids
		RETURN count(DISTINCT a) AS n
	`

	records, err := r.read(ctx, query, map[string]interface{}{
		"ownerID": ownerID,
		"ids":     ids,
	})
	if err != nil {
		return 0, storeError("achievement", "count achievements", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return getIntFromRecord(records[0], "n"), nil
}

func achievementParams(a *domain.Achievement) map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"ownerID":     a.OwnerID,
		"title":       a.Title,
		"category":    string(a.Category),
		"description": a.Description,
		"date":        timestamp(a.Date),
		"skills":      nonNil(a.Skills),
		"proofLink":   a.ProofLink,
		"tags":        nonNil(a.Tags),
		"createdAt":   timestamp(a.CreatedAt),
		"updatedAt":   timestamp(a.UpdatedAt),
	}
}

func achievementFromMap(m map[string]interface{}) domain.Achievement {
	return domain.Achievement{
		ID:          getStringFromMap(m, "id", ""),
		OwnerID:     getStringFromMap(m, "owner_id", ""),
		Title:       getStringFromMap(m, "title", ""),
		Category:    domain.Category(getStringFromMap(m, "category", "")),
		Description: getStringFromMap(m, "description", ""),
		Date:        getTimeFromMap(m, "date"),
		Skills:      getStringSliceFromMap(m, "skills"),
		ProofLink:   getStringFromMap(m, "proof_link", ""),
		Tags:        getStringSliceFromMap(m, "tags"),
		CreatedAt:   getTimeFromMap(m, "created_at"),
		UpdatedAt:   getTimeFromMap(m, "updated_at"),
	}
}

func limitClause(limit int) string {
	if limit > 0 {
		return "LIMIT $limit"
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
