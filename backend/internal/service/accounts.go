package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"growth-graph/backend/internal/auth"
	"growth-graph/backend/internal/domain"
	"growth-graph/backend/internal/handle"
	"growth-graph/backend/internal/store"
	apperrors "growth-graph/backend/pkg/errors"
	"growth-graph/backend/pkg/logger"
)

// usernameAttempts bounds how often a generated handle is regenerated after
// losing an insert race to another registration.
const usernameAttempts = 5

// RegisterInput is the registration payload
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username"`
}

// ProfileUpdate changes the non-nil fields of an account
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`
}

// Session is returned by Register and Login
type Session struct {
	Token string         `json:"token"`
	User  domain.Account `json:"user"`
}

// Accounts registers and authenticates users
type Accounts struct {
	users     store.Users
	handles   *handle.Generator
	tokens    *auth.Tokens
	passwords *auth.Passwords
	now       func() time.Time
	newID     func() string
}

// Register creates a user and returns a session for it.
//
// A chosen username is used as is and a collision is reported as a conflict.
// Otherwise a handle is generated and regenerated when the insert loses a
// race for it.
func (s *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	chosen := domain.NormalizeUsername(in.Username)

	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if chosen != "" {
		if err := domain.ValidateUsername(chosen); err != nil {
			return nil, err
		}
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 1; ; attempt++ {
		user.Username = chosen
		if chosen == "" {
			if user.Username, err = s.handles.Generate(ctx, name, email); err != nil {
				return nil, err
			}
		}

		err = s.users.CreateUser(ctx, user)
		if err == nil {
			break
		}
		if chosen != "" || attempt >= usernameAttempts || apperrors.ConflictField(err) != "username" {
			return nil, err
		}
		logger.Get().Warn("Generated username taken at insert, retrying",
			zap.String("username", user.Username),
			zap.Int("attempt", attempt),
		)
	}

	logger.Get().Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return s.session(user)
}

// Login checks credentials and returns a session. A user without a handle
// gets one assigned.
func (s *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidation("email and password", "are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !s.passwords.Matches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	if err := s.ensureUsername(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// Me returns the account of userID, assigning a handle if it has none.
func (s *Accounts) Me(ctx context.Context, userID string) (domain.Account, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.ensureUsername(ctx, user); err != nil {
		return domain.Account{}, err
	}
	return user.Account(), nil
}

// UpdateProfile applies the non-nil fields of upd.
func (s *Accounts) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (domain.Account, error) {
	patch := domain.UserPatch{
		Name:         trimmed(upd.Name),
		Bio:          trimmed(upd.Bio),
		ProfilePhoto: trimmed(upd.ProfilePhoto),
		UpdatedAt:    s.now().UTC(),
	}
	if patch.Name != nil {
		if err := domain.ValidateName(*patch.Name); err != nil {
			return domain.Account{}, err
		}
	}

	user, err := s.users.PatchUser(ctx, userID, patch)
	if err != nil {
		return domain.Account{}, err
	}
	return user.Account(), nil
}

// ensureUsername backfills the handle of users created before handles existed.
func (s *Accounts) ensureUsername(ctx context.Context, user *domain.User) error {
	if user.Username != "" {
		return nil
	}

	for attempt := 1; ; attempt++ {
		username, err := s.handles.Generate(ctx, user.Name, user.Email)
		if err != nil {
			return err
		}

		stored, err := s.users.PatchUser(ctx, user.ID, domain.UserPatch{Username: &username, UpdatedAt: s.now().UTC()})
		if err == nil {
			*user = *stored
			logger.Get().Info("Username backfilled", zap.String("user_id", user.ID), zap.String("username", username))
			return nil
		}
		if attempt >= usernameAttempts || apperrors.ConflictField(err) != "username" {
			return err
		}
	}
}

func (s *Accounts) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{Token: token, User: user.Account()}, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
