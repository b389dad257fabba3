package postgres

import (
	"context"

	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

func (s *Store) CreateConnection(ctx context.Context, c *domain.Connection) error {
	query :=
		`INSERT INTO connections (id, owner_id, from_id, to_id, relation, story_text, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query,
		c.ID, c.OwnerID, c.FromID, c.ToID, string(c.Relation), c.StoryText, c.CreatedAt)
	if err != nil {
		return storeError("connection", "create connection", err)
	}

	s.logger.Info("Connection created",
		zap.String("owner_id", c.OwnerID),
		zap.String("connection_id", c.ID),
		zap.String("relation", string(c.Relation)),
	)
	return nil
}

func (s *Store) ListConnections(ctx context.Context, f domain.Filter) ([]domain.Connection, error) {
	query :=
		`SELECT id, owner_id, from_id, to_id, relation, story_text, created_at FROM connections
		 WHERE $1 = '' OR owner_id = $1
		 ORDER BY created_at ASC, id ASC` + limitClause(f.Limit)

	rows, err := s.db.Query(ctx, query, f.OwnerID)
	if err != nil {
		return nil, storeError("connection", "list connections", err)
	}
	defer rows.Close()

	out := make([]domain.Connection, 0)
	for rows.Next() {
		var c domain.Connection
		var relation string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.FromID, &c.ToID, &relation, &c.StoryText, &c.CreatedAt); err != nil {
			return nil, storeError("connection", "scan connection", err)
		}
		c.Relation = domain.RelationKind(relation)
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("connection", "list connections", err)
	}
	return out, nil
}

func (s *Store) DeleteConnection(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM connections WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return storeError("connection", "delete connection", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("connection", id)
	}
	return nil
}

func (s *Store) DeleteConnectionsTouching(ctx context.Context, ownerID, achievementID string) (int, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM connections WHERE owner_id = $1 AND (from_id = $2 OR to_id = $2)`, ownerID, achievementID)
	if err != nil {
		return 0, storeError("connection", "delete connections", err)
	}

	removed := int(tag.RowsAffected())
	s.logger.Info("Connections removed with achievement",
		zap.String("owner_id", ownerID),
		zap.String("achievement_id", achievementID),
		zap.Int("removed", removed),
	)
	return removed, nil
}
