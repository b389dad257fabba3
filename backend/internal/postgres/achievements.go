package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

const achievementColumns = `id, owner_id, title, category, description, date, skills, proof_link, tags, created_at, updated_at`

func (s *Store) CreateAchievement(ctx context.Context, a *domain.Achievement) error {
	query :=
		`INSERT INTO achievements (` + achievementColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.Exec(ctx, query,
		a.ID, a.OwnerID, a.Title, string(a.Category), a.Description, a.Date,
		nonNil(a.Skills), a.ProofLink, nonNil(a.Tags), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return storeError("achievement", "create achievement", err)
	}

	s.logger.Info("Achievement created", zap.String("owner_id", a.OwnerID), zap.String("achievement_id", a.ID))
	return nil
}

func (s *Store) ListAchievements(ctx context.Context, f domain.Filter) ([]domain.Achievement, error) {
	query :=
		`SELECT ` + achievementColumns + ` FROM achievements
		 WHERE $1 = '' OR owner_id = $1
		 ORDER BY date ASC, created_at ASC, id ASC` + limitClause(f.Limit)

	rows, err := s.db.Query(ctx, query, f.OwnerID)
	if err != nil {
		return nil, storeError("achievement", "list achievements", err)
	}
	defer rows.Close()

	out := make([]domain.Achievement, 0)
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, storeError("achievement", "scan achievement", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("achievement", "list achievements", err)
	}
	return out, nil
}

func (s *Store) GetAchievement(ctx context.Context, ownerID, id string) (*domain.Achievement, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+achievementColumns+` FROM achievements WHERE id = $1 AND owner_id = $2`, id, ownerID)

	a, err := scanAchievement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("achievement", id)
		}
		return nil, storeError("achievement", "get achievement", err)
	}
	return a, nil
}

func (s *Store) UpdateAchievement(ctx context.Context, a *domain.Achievement) error {
	query :=
		`UPDATE achievements
		 SET title = $3, category = $4, description = $5, date = $6, skills = $7,
		     proof_link = $8, tags = $9, updated_at = $10
		 WHERE id = $1 AND owner_id = $2`

	tag, err := s.db.Exec(ctx, query,
		a.ID, a.OwnerID, a.Title, string(a.Category), a.Description, a.Date,
		nonNil(a.Skills), a.ProofLink, nonNil(a.Tags), a.UpdatedAt)
	if err != nil {
		return storeError("achievement", "update achievement", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("achievement", a.ID)
	}
	return nil
}

// DeleteAchievement removes the achievement together with every connection
// touching it in one transaction, so a connection created concurrently with
// the delete cannot be left dangling.
func (s *Store) DeleteAchievement(ctx context.Context, ownerID, id string) error {
	err := s.inTx(ctx, func(tx *Store) error {
		if _, err := tx.DeleteConnectionsTouching(ctx, ownerID, id); err != nil {
			return err
		}

		tag, err := tx.db.Exec(ctx, `DELETE FROM achievements WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			return storeError("achievement", "delete achievement", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFound("achievement", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Achievement deleted", zap.String("owner_id", ownerID), zap.String("achievement_id", id))
	return nil
}

func (s *Store) CountOwnedAchievements(ctx context.Context, ownerID string, ids []string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM achievements WHERE owner_id = $1 AND id = ANY($2)`, ownerID, ids).Scan(&n)
	if err != nil {
		return 0, storeError("achievement", "count achievements", err)
	}
	return n, nil
}

func scanAchievement(row pgx.Row) (*domain.Achievement, error) {
	a := &domain.Achievement{}
	var category string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Title, &category, &a.Description, &a.Date,
		&a.Skills, &a.ProofLink, &a.Tags, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Category = domain.Category(category)
	a.Date = a.Date.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
