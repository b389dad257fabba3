package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "growth-graph/backend/pkg/errors"
)

const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MinPasswordLength = 6
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,40}$`)

// User owns achievements and connections. Username and Email are globally unique.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Bio             string    `json:"bio"`
	ProfilePhoto    string    `json:"profile_photo"`
	CustomNarrative string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserPatch names the user fields to change. Nil fields are left as stored,
// so concurrent patches of different fields do not overwrite each other.
type UserPatch struct {
	Name            *string
	Username        *string
	Bio             *string
	ProfilePhoto    *string
	CustomNarrative *string
	UpdatedAt       time.Time
}

// Account is the view of a user returned to its owner.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	ProfilePhoto string    `json:"profile_photo"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicProfile is the view of a user exposed to anonymous visitors.
type PublicProfile struct {
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	ProfilePhoto string    `json:"profile_photo"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Account() Account {
	return Account{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Bio:          u.Bio,
		ProfilePhoto: u.ProfilePhoto,
		CreatedAt:    u.CreatedAt,
	}
}

func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		Name:         u.Name,
		Username:     u.Username,
		Bio:          u.Bio,
		ProfilePhoto: u.ProfilePhoto,
		CreatedAt:    u.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername lowercases and trims a handle.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateName checks the display name bounds.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinNameLength || n > MaxNameLength {
		return apperrors.NewValidation("name", "must be between 2 and 100 characters")
	}
	return nil
}

// ValidateEmail checks an already-normalized email address.
func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidation("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.NewValidation("email", "is not a valid address")
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidation("password", "must be at least 6 characters")
	}
	return nil
}

// ValidateUsername checks a user-chosen, already-normalized handle.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperrors.NewValidation("username", "must be 3-40 characters of a-z, 0-9 or _")
	}
	return nil
}
