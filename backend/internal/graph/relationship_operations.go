package graph

import (
	"context"

	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

// ============================================================================
// Connection (Achievement-to-Achievement Relationship) Operations
// ============================================================================

// CreateConnection creates a CONNECTS relationship between two achievements
// of the same owner. A repeated (owner, from, to, relation) trips the
// edge_key constraint.
func (r *Repository) CreateConnection(ctx context.Context, c *domain.Connection) error {
	query := `
		MATCH (from:Achievement {id: $fromID, owner_id: $ownerID})
		MATCH (to:Achievement {id: $toID, owner_id: $ownerID})
		CREATE (from)-[r:CONNECTS {
			id: $id,
			owner_id: $ownerID,
			from_id: $fromID,
			to_id: $toID,
			relation: $relation,
			story_text: $storyText,
			edge_key: $edgeKey,
			created_at: datetime($createdAt)
		}]->(to)
		RETURN r.id AS id
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"id":        c.ID,
		"ownerID":   c.OwnerID,
		"fromID":    c.FromID,
		"toID":      c.ToID,
		"relation":  string(c.Relation),
		"storyText": c.StoryText,
		"edgeKey":   c.EdgeKey(),
		"createdAt": timestamp(c.CreatedAt),
	})
	if err != nil {
		return storeError("connection", "create connection", err)
	}
	if len(records) == 0 {
		return apperrors.NewNotFound("achievement", c.FromID)
	}

	r.logger.Info("Connection created",
		zap.String("owner_id", c.OwnerID),
		zap.String("connection_id", c.ID),
		zap.String("relation", string(c.Relation)),
	)
	return nil
}

// ListConnections lists connections by creation time
func (r *Repository) ListConnections(ctx context.Context, f domain.Filter) ([]domain.Connection, error) {
	query := `
		MATCH (:Achievement)-[r:CONNECTS]->(:Achievement)
		WHERE $ownerID = '' OR r.owner_id = $ownerID
		RETURN r {.*} AS r
		ORDER BY r.created_at ASC, r.id ASC
	` + limitClause(f.Limit)

	records, err := r.read(ctx, query, map[string]interface{}{
		"ownerID": f.OwnerID,
		"limit":   int64(f.Limit),
	})
	if err != nil {
		return nil, storeError("connection", "list connections", err)
	}

	out := make([]domain.Connection, 0, len(records))
	for _, record := range records {
		out = append(out, connectionFromMap(getMapFromRecord(record, "r")))
	}
	return out, nil
}

// DeleteConnection removes one connection of ownerID
func (r *Repository) DeleteConnection(ctx context.Context, ownerID, id string) error {
	query := `
		MATCH ()-[r:CONNECTS {id: $id, owner_id: $ownerID}]->()
		WITH r, r.id AS id
		DELETE r
		RETURN id
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"id":      id,
		"ownerID": ownerID,
	})
	if err != nil {
		return storeError("connection", "delete connection", err)
	}
	if len(records) == 0 {
		return apperrors.NewNotFound("connection", id)
	}
	return nil
}

// DeleteConnectionsTouching removes every connection entering or leaving an
// achievement
func (r *Repository) DeleteConnectionsTouching(ctx context.Context, ownerID, achievementID string) (int, error) {
	query := `
		OPTIONAL MATCH (:Achievement {id: $achievementID})-[r:CONNECTS {owner_id: $ownerID}]-()
		WITH DISTINCT r
		DELETE r
		RETURN count(r) AS removed
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"achievementID": achievementID,
		"ownerID":       ownerID,
	})
	if err != nil {
		return 0, storeError("connection", "delete connections", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	removed := getIntFromRecord(records[0], "removed")
	r.logger.Info("Connections removed with achievement",
		zap.String("owner_id", ownerID),
		zap.String("achievement_id", achievementID),
		zap.Int("removed", removed),
	)
	return removed, nil
}

func connectionFromMap(m map[string]interface{}) domain.Connection {
	return domain.Connection{
		ID:        getStringFromMap(m, "id", ""),
		OwnerID:   getStringFromMap(m, "owner_id", ""),
		FromID:    getStringFromMap(m, "from_id", ""),
		ToID:      getStringFromMap(m, "to_id", ""),
		Relation:  domain.RelationKind(getStringFromMap(m, "relation", "")),
		StoryText: getStringFromMap(m, "story_text", ""),
		CreatedAt: getTimeFromMap(m, "created_at"),
	}
}
