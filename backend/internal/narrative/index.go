package narrative

import (
	"slices"

	"growth-graph/backend/internal/domain"
)

// Index is the in-memory view of one achievement graph: id lookup plus the
// outgoing edges of every achievement.
//
// Callers pass already-scoped, already-consistent data; nothing here checks
// ownership. Achievement ids are unique upstream, so the lookup is built by
// explicit insertion and a repeated id keeps its first record.
type Index struct {
	byID     map[string]domain.Achievement
	outgoing map[string][]domain.Connection
}

// BuildIndex indexes achievements by id and connections by source id.
// Connections keep their input order within each source.
func BuildIndex(achievements []domain.Achievement, connections []domain.Connection) *Index {
	ix := &Index{
		byID:     make(map[string]domain.Achievement, len(achievements)),
		outgoing: make(map[string][]domain.Connection),
	}
	for _, a := range achievements {
		if _, seen := ix.byID[a.ID]; seen {
			continue
		}
		ix.byID[a.ID] = a
	}
	for _, c := range connections {
		ix.outgoing[c.FromID] = append(ix.outgoing[c.FromID], c)
	}
	return ix
}

// Len returns the number of indexed achievements.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// Achievement looks up an achievement by id.
func (ix *Index) Achievement(id string) (domain.Achievement, bool) {
	a, ok := ix.byID[id]
	return a, ok
}

// Outgoing returns the connections whose source is id, in input order,
// including any whose target is unknown.
func (ix *Index) Outgoing(id string) []domain.Connection {
	return ix.outgoing[id]
}

// Resolve returns both endpoints of c. ok is false when either is missing.
func (ix *Index) Resolve(c domain.Connection) (from, to domain.Achievement, ok bool) {
	from, fromOK := ix.byID[c.FromID]
	to, toOK := ix.byID[c.ToID]
	return from, to, fromOK && toOK
}

// ResolvedOutgoing returns the outgoing connections of id whose target is
// known, in input order. Dangling edges are dropped.
func (ix *Index) ResolvedOutgoing(id string) []domain.Connection {
	out := make([]domain.Connection, 0, len(ix.outgoing[id]))
	for _, c := range ix.outgoing[id] {
		if _, ok := ix.byID[c.ToID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// NextSteps returns the resolved targets of id's outgoing connections sorted
// ascending by date. Targets sharing a date keep edge order.
func (ix *Index) NextSteps(id string) []domain.Achievement {
	steps := make([]domain.Achievement, 0, len(ix.outgoing[id]))
	for _, c := range ix.outgoing[id] {
		if target, ok := ix.byID[c.ToID]; ok {
			steps = append(steps, target)
		}
	}
	slices.SortStableFunc(steps, func(a, b domain.Achievement) int {
		return a.Date.Compare(b.Date)
	})
	return steps
}
