package store

import (
	"context"
	"slices"
	"sync"

	"growth-graph/backend/internal/domain"
	apperrors "growth-graph/backend/pkg/errors"
)

// Memory is a process-local Store. It is used for tests and for
// STORE_DRIVER=memory in development.
type Memory struct {
	mu           sync.RWMutex
	seq          int64
	users        map[string]domain.User
	achievements map[string]domain.Achievement
	connections  map[string]domain.Connection
	order        map[string]int64 // insertion sequence, used as the final sort key
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]domain.User),
		achievements: make(map[string]domain.Achievement),
		connections:  make(map[string]domain.Connection),
		order:        make(map[string]int64),
	}
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) track(id string) {
	m.seq++
	m.order[id] = m.seq
}

// ============================================================================
// Users
// ============================================================================

func (m *Memory) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.NewConflict("user", "email", nil)
		}
		if user.Username != "" && u.Username == user.Username {
			return apperrors.NewConflict("user", "username", nil)
		}
	}
	m.users[user.ID] = *user
	m.track(user.ID)
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", id)
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool { return u.Email == email }, email)
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool { return u.Username != "" && u.Username == username }, username)
}

func (m *Memory) findUser(match func(domain.User) bool, key string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", key)
}

func (m *Memory) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *Memory) PatchUser(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", id)
	}
	if patch.Username != nil && *patch.Username != "" {
		for other, u := range m.users {
			if other != id && u.Username == *patch.Username {
				return nil, apperrors.NewConflict("user", "username", nil)
			}
		}
		user.Username = *patch.Username
	}
	setIf(&user.Name, patch.Name)
	setIf(&user.Bio, patch.Bio)
	setIf(&user.ProfilePhoto, patch.ProfilePhoto)
	setIf(&user.CustomNarrative, patch.CustomNarrative)
	user.UpdatedAt = patch.UpdatedAt

	m.users[id] = user
	return &user, nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ============================================================================
// Achievements
// ============================================================================

func (m *Memory) CreateAchievement(_ context.Context, a *domain.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.achievements[a.ID] = cloneAchievement(*a)
	m.track(a.ID)
	return nil
}

func (m *Memory) ListAchievements(_ context.Context, f domain.Filter) ([]domain.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Achievement, 0)
	for _, a := range m.achievements {
		if f.OwnerID == "" || a.OwnerID == f.OwnerID {
			out = append(out, cloneAchievement(a))
		}
	}
	slices.SortFunc(out, func(a, b domain.Achievement) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(m.order[a.ID] - m.order[b.ID])
	})
	return limit(out, f.Limit), nil
}

func (m *Memory) GetAchievement(_ context.Context, ownerID, id string) (*domain.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.achievements[id]
	if !ok || a.OwnerID != ownerID {
		return nil, apperrors.NewNotFound("achievement", id)
	}
	a = cloneAchievement(a)
	return &a, nil
}

func (m *Memory) UpdateAchievement(_ context.Context, a *domain.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.achievements[a.ID]
	if !ok || existing.OwnerID != a.OwnerID {
		return apperrors.NewNotFound("achievement", a.ID)
	}
	m.achievements[a.ID] = cloneAchievement(*a)
	return nil
}

func (m *Memory) DeleteAchievement(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.achievements[id]
	if !ok || a.OwnerID != ownerID {
		return apperrors.NewNotFound("achievement", id)
	}
	delete(m.achievements, id)
	delete(m.order, id)
	return nil
}

func (m *Memory) CountOwnedAchievements(_ context.Context, ownerID string, ids []string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, id := range uniqueIDs(ids) {
		if a, ok := m.achievements[id]; ok && a.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// ============================================================================
// Connections
// ============================================================================

func (m *Memory) CreateConnection(_ context.Context, c *domain.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := c.EdgeKey()
	for _, existing := range m.connections {
		if existing.EdgeKey() == key {
			return apperrors.NewConflict("connection", "relation", nil)
		}
	}
	m.connections[c.ID] = *c
	m.track(c.ID)
	return nil
}

func (m *Memory) ListConnections(_ context.Context, f domain.Filter) ([]domain.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Connection, 0)
	for _, c := range m.connections {
		if f.OwnerID == "" || c.OwnerID == f.OwnerID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Connection) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(m.order[a.ID] - m.order[b.ID])
	})
	return limit(out, f.Limit), nil
}

func (m *Memory) DeleteConnection(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.connections[id]
	if !ok || c.OwnerID != ownerID {
		return apperrors.NewNotFound("connection", id)
	}
	delete(m.connections, id)
	delete(m.order, id)
	return nil
}

func (m *Memory) DeleteConnectionsTouching(_ context.Context, ownerID, achievementID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, c := range m.connections {
		if c.OwnerID != ownerID {
			continue
		}
		if c.FromID == achievementID || c.ToID == achievementID {
			delete(m.connections, id)
			delete(m.order, id)
			removed++
		}
	}
	return removed, nil
}

// Helper functions

func cloneAchievement(a domain.Achievement) domain.Achievement {
	a.Skills = slices.Clone(a.Skills)
	a.Tags = slices.Clone(a.Tags)
	return a
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
