// Package narrative turns an achievement graph into a chronological timeline
// and a single prose paragraph.
//
// Synthesize is a pure, total function: it does no I/O, holds no state and
// never fails. Every degenerate input has a defined fallback.
package narrative

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"growth-graph/backend/internal/domain"
)

// Placeholder is the story returned for an empty graph with no override.
const Placeholder = "Start adding achievements to generate your narrative story."

// fallbackPhrase is used for relation kinds missing from relationPhrases.
const fallbackPhrase = "connected to"

var relationPhrases = map[domain.RelationKind]string{
	domain.RelationLedTo:      "led to",
	domain.RelationEnabled:    "enabled",
	domain.RelationAppliedIn:  "was applied in",
	domain.RelationResultedIn: "resulted in",
}

// Narrative is the synthesized story plus the timeline it was built from
type Narrative struct {
	Story    string          `json:"story"`
	Timeline []TimelineEntry `json:"timeline"`
}

// TimelineEntry is one achievement in chronological position
type TimelineEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	RelationOut []Relation `json:"relation_out"`
	NextSteps   []Step     `json:"next_steps"`
}

// Relation is an outgoing connection as shown on the timeline
type Relation struct {
	ID           string              `json:"id"`
	RelationType domain.RelationKind `json:"relation_type"`
	StoryText    string              `json:"story_text"`
	ToID         string              `json:"to_achievement_id"`
}

// Step is a resolved connection target
type Step struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Synthesize builds the timeline and story for one graph. A non-blank
// override replaces the generated story but never the timeline.
func Synthesize(achievements []domain.Achievement, connections []domain.Connection, override string) Narrative {
	override = strings.TrimSpace(override)

	if len(achievements) == 0 {
		story := override
		if story == "" {
			story = Placeholder
		}
		return Narrative{Story: story, Timeline: []TimelineEntry{}}
	}

	ordered := Chronological(achievements)
	ix := BuildIndex(ordered, connections)

	timeline := make([]TimelineEntry, 0, len(ordered))
	for _, a := range ordered {
		timeline = append(timeline, timelineEntry(ix, a))
	}

	story := override
	if story == "" {
		story = compose(ix, ordered)
	}

	return Narrative{Story: story, Timeline: timeline}
}

// Chronological returns a copy of achievements sorted by date, then by
// creation time. Full ties keep input order.
func Chronological(achievements []domain.Achievement) []domain.Achievement {
	ordered := slices.Clone(achievements)
	slices.SortStableFunc(ordered, func(a, b domain.Achievement) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return ordered
}

// Phrase returns the verb phrase for a relation kind.
func Phrase(kind domain.RelationKind) string {
	if p, ok := relationPhrases[kind]; ok {
		return p
	}
	return fallbackPhrase
}

func timelineEntry(ix *Index, a domain.Achievement) TimelineEntry {
	entry := TimelineEntry{
		ID:          a.ID,
		Title:       a.Title,
		Date:        a.Date,
		Description: a.Description,
		RelationOut: []Relation{},
		NextSteps:   []Step{},
	}
	for _, c := range ix.ResolvedOutgoing(a.ID) {
		entry.RelationOut = append(entry.RelationOut, Relation{
			ID:           c.ID,
			RelationType: c.Relation,
			StoryText:    c.StoryText,
			ToID:         c.ToID,
		})
	}
	for _, next := range ix.NextSteps(a.ID) {
		entry.NextSteps = append(entry.NextSteps, Step{ID: next.ID, Title: next.Title, Date: next.Date})
	}
	return entry
}

// compose walks achievements in chronological order and their outgoing
// connections in stored order. This differs from NextSteps, which is date
// ordered.
// TODO: product review on whether prose should follow next-steps order.
func compose(ix *Index, ordered []domain.Achievement) string {
	first := ordered[0]
	sentences := []string{
		fmt.Sprintf("Started with %s in %d.", first.Title, first.Date.Year()),
	}

	for _, a := range ordered {
		for _, c := range ix.Outgoing(a.ID) {
			from, to, ok := ix.Resolve(c)
			if !ok {
				continue
			}
			sentences = append(sentences, sentence(c, from, to))
		}
	}

	return strings.Join(sentences, " ")
}

func sentence(c domain.Connection, from, to domain.Achievement) string {
	if text := strings.TrimSpace(c.StoryText); text != "" {
		if strings.HasSuffix(text, ".") {
			return text
		}
		return text + "."
	}
	return fmt.Sprintf("%s %s %s.", from.Title, Phrase(c.Relation), to.Title)
}
