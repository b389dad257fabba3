package graph

import (
	"context"

	"go.uber.org/zap"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// CreateUser inserts a user node. Email and username uniqueness is enforced
// by the schema constraints.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		CREATE (u:User {
			id: $id,
			name: $name,
			username: $username,
			email: $email,
			password_hash: $passwordHash,
			bio: $bio,
			profile_photo: $profilePhoto,
			custom_narrative: $customNarrative,
			created_at: datetime($createdAt),
			updated_at: datetime($updatedAt)
		})
		RETURN u.id AS id
	`

	_, err := r.write(ctx, query, userParams(user))
	if err != nil {
		return storeError("user", "create user", err)
	}

	r.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// GetUserByID fetches a user by id
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findUser(ctx, "MATCH (u:User {id: $key}) RETURN u {.*} AS u", id)
}

// GetUserByEmail fetches a user by normalized email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, "MATCH (u:User {email: $key}) RETURN u {.*} AS u", email)
}

// GetUserByUsername fetches a user by normalized handle
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findUser(ctx, "MATCH (u:User {username: $key}) RETURN u {.*} AS u", username)
}

// UsernameExists reports whether any user holds username
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	records, err := r.read(ctx, "MATCH (u:User {username: $username}) RETURN count(u) AS n", map[string]interface{}{
		"username": username,
	})
	if err != nil {
		return false, storeError("user", "probe username", err)
	}
	return len(records) > 0 && getIntFromRecord(records[0], "n") > 0, nil
}

// PatchUser sets only the properties named by patch
func (r *Repository) PatchUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	query := `
		MATCH (u:User {id: $id})
		SET u.name = coalesce($name, u.name),
		    u.username = coalesce($username, u.username),
		    u.bio = coalesce($bio, u.bio),
		    u.profile_photo = coalesce($profilePhoto, u.profile_photo),
		    u.custom_narrative = coalesce($customNarrative, u.custom_narrative),
		    u.updated_at = datetime($updatedAt)
		RETURN u {.*} AS u
	`

	var username interface{}
	if patch.Username != nil {
		username = nullable(*patch.Username)
	}

	records, err := r.write(ctx, query, map[string]interface{}{
		"id":              id,
		"name":            optional(patch.Name),
		"username":        username,
		"bio":             optional(patch.Bio),
		"profilePhoto":    optional(patch.ProfilePhoto),
		"customNarrative": optional(patch.CustomNarrative),
		"updatedAt":       timestamp(patch.UpdatedAt),
	})
	if err != nil {
		return nil, storeError("user", "patch user", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound("user", id)
	}
	return userFromMap(getMapFromRecord(records[0], "u")), nil
}

func (r *Repository) findUser(ctx context.Context, query, key string) (*domain.User, error) {
	records, err := r.read(ctx, query, map[string]interface{}{"key": key})
	if err != nil {
		return nil, storeError("user", "find user", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound("user", key)
	}
	return userFromMap(getMapFromRecord(records[0], "u")), nil
}

func userParams(user *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":              user.ID,
		"name":            user.Name,
		"username":        nullable(user.Username),
		"email":           user.Email,
		"passwordHash":    user.PasswordHash,
		"bio":             user.Bio,
		"profilePhoto":    user.ProfilePhoto,
		"customNarrative": user.CustomNarrative,
		"createdAt":       timestamp(user.CreatedAt),
		"updatedAt":       timestamp(user.UpdatedAt),
	}
}

func userFromMap(m map[string]interface{}) *domain.User {
	return &domain.User{
		ID:              getStringFromMap(m, "id", ""),
		Name:            getStringFromMap(m, "name", ""),
		Username:        getStringFromMap(m, "username", ""),
		Email:           getStringFromMap(m, "email", ""),
		PasswordHash:    getStringFromMap(m, "password_hash", ""),
		Bio:             getStringFromMap(m, "bio", ""),
		ProfilePhoto:    getStringFromMap(m, "profile_photo", ""),
		CustomNarrative: getStringFromMap(m, "custom_narrative", ""),
		CreatedAt:       getTimeFromMap(m, "created_at"),
		UpdatedAt:       getTimeFromMap(m, "updated_at"),
	}
}
