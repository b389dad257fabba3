// Package service holds the application operations behind the HTTP API:
// accounts, achievements, connections, narratives and public profiles.
//
// Validation and ownership checks happen here, before anything reaches the
// store or the narrative synthesizer.
package service

import (
	"time"

	"github.com/google/uuid"

	"growth-graph/backend/internal/auth"
	"growth-graph/backend/internal/handle"
	"growth-graph/backend/internal/store"
)

// Public list limits
const (
	PublicAchievementLimit  = 250
	PublicConnectionLimit   = 500
	ProfileAchievementLimit = 500
	ProfileConnectionLimit  = 800
)

// Services bundles every operation group over one store
type Services struct {
	Accounts     *Accounts
	Achievements *Achievements
	Connections  *Connections
	Narratives   *Narratives
	Profiles     *Profiles
}

// New wires every service to st.
func New(st store.Store, tokens *auth.Tokens, passwords *auth.Passwords) *Services {
	clock := time.Now
	newID := uuid.NewString

	narratives := &Narratives{users: st, achievements: st, connections: st, now: clock}
	return &Services{
		Accounts: &Accounts{
			users:     st,
			handles:   handle.NewGenerator(st),
			tokens:    tokens,
			passwords: passwords,
			now:       clock,
			newID:     newID,
		},
		Achievements: &Achievements{achievements: st, connections: st, now: clock, newID: newID},
		Connections:  &Connections{achievements: st, connections: st, now: clock, newID: newID},
		Narratives:   narratives,
		Profiles:     &Profiles{users: st, achievements: st, connections: st, narratives: narratives},
	}
}
