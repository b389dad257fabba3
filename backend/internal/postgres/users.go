package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

const userColumns = `id, name, COALESCE(username, ''), email, password_hash, bio, profile_photo, custom_narrative, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	query :=
		`INSERT INTO users (id, name, username, email, password_hash, bio, profile_photo, custom_narrative, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.Exec(ctx, query,
		user.ID, user.Name, nullable(user.Username), user.Email, user.PasswordHash,
		user.Bio, user.ProfilePhoto, user.CustomNarrative, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return storeError("user", "create user", err)
	}

	s.logger.Info("User created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, storeError("user", "probe username", err)
	}
	return exists, nil
}

func (s *Store) PatchUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	query :=
		`UPDATE users
		 SET name = COALESCE($2, name),
		     username = COALESCE($3, username),
		     bio = COALESCE($4, bio),
		     profile_photo = COALESCE($5, profile_photo),
		     custom_narrative = COALESCE($6, custom_narrative),
		     updated_at = $7
		 WHERE id = $1
		 RETURNING ` + userColumns

	var username *string
	if patch.Username != nil {
		username = nullable(*patch.Username)
	}

	row := s.db.QueryRow(ctx, query,
		id, patch.Name, username, patch.Bio, patch.ProfilePhoto, patch.CustomNarrative, patch.UpdatedAt)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, storeError("user", "patch user", err)
	}
	return user, nil
}

func (s *Store) findUser(ctx context.Context, query, key string) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", key)
		}
		return nil, storeError("user", "find user", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Username, &user.Email, &user.PasswordHash,
		&user.Bio, &user.ProfilePhoto, &user.CustomNarrative, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
