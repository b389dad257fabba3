package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "growth-graph/backend/pkg/errors"
)

// Category is the closed set of achievement kinds
type Category string

const (
	CategoryCourse      Category = "course"
	CategoryProject     Category = "project"
	CategoryCertificate Category = "certificate"
	CategoryExperience  Category = "experience"
	CategoryAward       Category = "award"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryCourse, CategoryProject, CategoryCertificate, CategoryExperience, CategoryAward,
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MaxTitleLength       = 140
	MaxDescriptionLength = 1500
)

// DateLayout is the wire format for achievement dates.
const DateLayout = "2006-01-02"

// Achievement is a dated personal milestone owned by exactly one user
type Achievement struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Skills      []string  `json:"skills"`
	ProofLink   string    `json:"proof_link"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalize trims free text, drops empty labels and truncates Date to the
// calendar day in UTC.
func (a *Achievement) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.ProofLink = strings.TrimSpace(a.ProofLink)
	a.Category = Category(strings.ToLower(strings.TrimSpace(string(a.Category))))
	a.Skills = cleanLabels(a.Skills)
	a.Tags = cleanLabels(a.Tags)
	if !a.Date.IsZero() {
		a.Date = CalendarDay(a.Date)
	}
}

// Validate checks the achievement invariants
func (a *Achievement) Validate() error {
	if a.Title == "" {
		return apperrors.NewValidation("title", "is required")
	}
	if utf8.RuneCountInString(a.Title) > MaxTitleLength {
		return apperrors.NewValidation("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}
	if !a.Category.Valid() {
		return apperrors.NewValidation("category", fmt.Sprintf("must be one of %v", Categories))
	}
	if strings.TrimSpace(a.Description) == "" {
		return apperrors.NewValidation("description", "is required")
	}
	if utf8.RuneCountInString(a.Description) > MaxDescriptionLength {
		return apperrors.NewValidation("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	if a.Date.IsZero() {
		return apperrors.NewValidation("date", "is required")
	}
	if a.ProofLink != "" && !isHTTPURL(a.ProofLink) {
		return apperrors.NewValidation("proof_link", "must be an http(s) URL")
	}
	return nil
}

// CalendarDay strips the time of day, keeping the date as seen in t's zone.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts either a bare calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.NewValidation("date", "is required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("date", "must be YYYY-MM-DD or RFC 3339")
	}
	return CalendarDay(t), nil
}

func cleanLabels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
