// Package handle derives public profile handles from display names.
package handle

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxBaseLength bounds the derived base before any suffix is added.
	MaxBaseLength = 30
	// MaxAttempts is how many candidates are probed before falling back to a
	// time-derived suffix.
	MaxAttempts = 50
	// Fallback is the base used when neither name nor email yields one.
	Fallback = "user"

	separator = "_"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into one separator, strips leading and trailing separators and truncates
// the result to MaxBaseLength.
func Slugify(s string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(s), separator)
	slug = strings.Trim(slug, separator)
	if len(slug) > MaxBaseLength {
		slug = slug[:MaxBaseLength]
	}
	return slug
}

// Base picks the handle base: the slugged name, else the slugged email
// local-part, else Fallback.
func Base(name, email string) string {
	if base := Slugify(name); base != "" {
		return base
	}
	local, _, _ := strings.Cut(email, "@")
	if base := Slugify(local); base != "" {
		return base
	}
	return Fallback
}

// Prober reports whether a handle is already held by some user.
type Prober interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// Generator assigns free handles by probing a Prober.
//
// The probe and the later write are not atomic; callers that insert the
// handle must treat a uniqueness conflict as a signal to generate again.
type Generator struct {
	probe       Prober
	now         func() time.Time
	maxAttempts int
}

// NewGenerator creates a generator backed by probe.
func NewGenerator(probe Prober) *Generator {
	return &Generator{probe: probe, now: time.Now, maxAttempts: MaxAttempts}
}

// Generate returns the first free candidate among base, base_1, base_2, …
// If MaxAttempts candidates are all taken it returns base_NNNNN where NNNNN
// are the last five digits of the current Unix time in milliseconds.
func (g *Generator) Generate(ctx context.Context, name, email string) (string, error) {
	base := Base(name, email)
	candidate := base

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		taken, err := g.probe.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe username %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + separator + strconv.Itoa(attempt+1)
	}

	millis := strconv.FormatInt(g.now().UnixMilli(), 10)
	if len(millis) > 5 {
		millis = millis[len(millis)-5:]
	}
	return base + separator + millis, nil
}
