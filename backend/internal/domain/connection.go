package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "growth-graph/backend/pkg/errors"
)

// RelationKind describes how one achievement relates to another
type RelationKind string

const (
	RelationLedTo      RelationKind = "led_to"
	RelationEnabled    RelationKind = "enabled"
	RelationAppliedIn  RelationKind = "applied_in"
	RelationResultedIn RelationKind = "resulted_in"
)

// RelationKinds lists every relation kind accepted on create.
var RelationKinds = []RelationKind{
	RelationLedTo, RelationEnabled, RelationAppliedIn, RelationResultedIn,
}

// Valid reports whether r belongs to the closed set.
func (r RelationKind) Valid() bool {
	for _, known := range RelationKinds {
		if r == known {
			return true
		}
	}
	return false
}

// Connection is a directed, typed edge between two achievements of the same owner.
// (OwnerID, FromID, ToID, Relation) is unique.
type Connection struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	FromID    string       `json:"from_achievement_id"`
	ToID      string       `json:"to_achievement_id"`
	Relation  RelationKind `json:"relation_type"`
	StoryText string       `json:"story_text"`
	CreatedAt time.Time    `json:"created_at"`
}

// Normalize trims ids and the relation kind. StoryText is stored as given.
func (c *Connection) Normalize() {
	c.FromID = strings.TrimSpace(c.FromID)
	c.ToID = strings.TrimSpace(c.ToID)
	c.Relation = RelationKind(strings.ToLower(strings.TrimSpace(string(c.Relation))))
}

// Validate checks everything that can be checked without the store.
func (c *Connection) Validate() error {
	if c.FromID == "" || c.ToID == "" {
		return apperrors.NewValidation("achievement ids", "are both required")
	}
	if c.FromID == c.ToID {
		return apperrors.NewValidation("connection", "cannot connect an achievement to itself")
	}
	if !c.Relation.Valid() {
		return apperrors.NewValidation("relation_type", fmt.Sprintf("must be one of %v", RelationKinds))
	}
	return nil
}

// EdgeKey is the uniqueness key of a connection.
func (c *Connection) EdgeKey() string {
	return c.OwnerID + "|" + c.FromID + "|" + c.ToID + "|" + string(c.Relation)
}
