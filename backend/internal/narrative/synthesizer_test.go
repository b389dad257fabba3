package narrative

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-graph/backend/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func achievement(id, title, date string, created int) domain.Achievement {
	return domain.Achievement{
		ID:          id,
		OwnerID:     "owner-1",
		Title:       title,
		Category:    domain.CategoryProject,
		Description: title + " description",
		Date:        day(date),
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, created, 0, time.UTC),
	}
}

func connection(id, from, to string, kind domain.RelationKind, story string) domain.Connection {
	return domain.Connection{ID: id, OwnerID: "owner-1", FromID: from, ToID: to, Relation: kind, StoryText: story}
}

func TestSynthesize_EmptyInputFallsBackToPlaceholder(t *testing.T) {
	n := Synthesize(nil, nil, "")

	assert.Equal(t, Placeholder, n.Story)
	require.NotNil(t, n.Timeline)
	assert.Empty(t, n.Timeline)
}

func TestSynthesize_EmptyInputUsesTrimmedOverride(t *testing.T) {
	n := Synthesize(nil, []domain.Connection{connection("c1", "a", "b", domain.RelationLedTo, "")}, "  My own story  ")

	assert.Equal(t, "My own story", n.Story)
	assert.Empty(t, n.Timeline)
}

func TestSynthesize_RelationPhrase(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("b", "B", "2021-01-01", 2),
		achievement("a", "A", "2020-01-01", 1),
	}
	connections := []domain.Connection{connection("c1", "a", "b", domain.RelationLedTo, "")}

	n := Synthesize(achievements, connections, "")

	assert.Equal(t, "Started with A in 2020. A led to B.", n.Story)
}

func TestSynthesize_AllRelationPhrases(t *testing.T) {
	tests := []struct {
		kind domain.RelationKind
		want string
	}{
		{domain.RelationLedTo, "Go led to API."},
		{domain.RelationEnabled, "Go enabled API."},
		{domain.RelationAppliedIn, "Go was applied in API."},
		{domain.RelationResultedIn, "Go resulted in API."},
		{domain.RelationKind("inspired"), "Go connected to API."},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			achievements := []domain.Achievement{
				achievement("go", "Go", "2019-05-01", 1),
				achievement("api", "API", "2019-06-01", 2),
			}
			n := Synthesize(achievements, []domain.Connection{connection("c", "go", "api", tt.kind, "")}, "")
			assert.Equal(t, "Started with Go in 2019. "+tt.want, n.Story)
		})
	}
}

func TestSynthesize_StoryTextOverridesTemplate(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("a", "A", "2020-01-01", 1),
		achievement("b", "B", "2020-02-01", 2),
		achievement("c", "C", "2020-03-01", 3),
	}
	connections := []domain.Connection{
		connection("c1", "a", "b", domain.RelationEnabled, "  The course opened doors  "),
		connection("c2", "b", "c", domain.RelationResultedIn, "It paid off."),
		connection("c3", "a", "c", domain.RelationLedTo, "   "),
	}

	n := Synthesize(achievements, connections, "")

	assert.Equal(t, "Started with A in 2020. The course opened doors. A led to C. It paid off.", n.Story)
}

func TestSynthesize_OverrideWins(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("a", "A", "2020-01-01", 1),
		achievement("b", "B", "2021-01-01", 2),
	}
	connections := []domain.Connection{connection("c1", "a", "b", domain.RelationLedTo, "")}

	n := Synthesize(achievements, connections, "\n  Written by me. \t")

	assert.Equal(t, "Written by me.", n.Story)
	assert.Len(t, n.Timeline, 2, "override replaces the story only")
}

func TestSynthesize_WhitespaceOverrideIsIgnored(t *testing.T) {
	achievements := []domain.Achievement{achievement("a", "A", "2022-03-04", 1)}

	n := Synthesize(achievements, nil, "   \n ")

	assert.Equal(t, "Started with A in 2022.", n.Story)
}

func TestSynthesize_ChronologicalOrderWithCreationTieBreak(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("late", "Late", "2023-01-01", 1),
		achievement("same-second", "Same second", "2021-06-01", 9),
		achievement("same-first", "Same first", "2021-06-01", 3),
		achievement("early", "Early", "2020-01-01", 5),
	}

	n := Synthesize(achievements, nil, "")

	ids := make([]string, 0, len(n.Timeline))
	for _, e := range n.Timeline {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"early", "same-first", "same-second", "late"}, ids)
	for i := 1; i < len(n.Timeline); i++ {
		assert.False(t, n.Timeline[i].Date.Before(n.Timeline[i-1].Date))
	}
	assert.Equal(t, "Started with Early in 2020.", n.Story)
}

func TestSynthesize_DoesNotReorderCallerSlice(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("b", "B", "2021-01-01", 2),
		achievement("a", "A", "2020-01-01", 1),
	}

	Synthesize(achievements, nil, "")

	assert.Equal(t, "b", achievements[0].ID)
}

func TestSynthesize_DanglingEdgesAreDropped(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("a", "A", "2020-01-01", 1),
		achievement("b", "B", "2020-06-01", 2),
	}
	connections := []domain.Connection{
		connection("c1", "a", "ghost", domain.RelationLedTo, ""),
		connection("c2", "ghost", "b", domain.RelationEnabled, "Should never be told."),
	}

	n := Synthesize(achievements, connections, "")

	require.Len(t, n.Timeline, 2)
	for _, e := range n.Timeline {
		assert.Empty(t, e.RelationOut)
		assert.Empty(t, e.NextSteps)
		assert.NotNil(t, e.RelationOut)
		assert.NotNil(t, e.NextSteps)
	}
	assert.Equal(t, "Started with A in 2020.", n.Story)
}

func TestSynthesize_NextStepsAreDateOrderedButProseIsNot(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("root", "Root", "2018-01-01", 1),
		achievement("later", "Later", "2020-01-01", 2),
		achievement("sooner", "Sooner", "2019-01-01", 3),
	}
	connections := []domain.Connection{
		connection("c1", "root", "later", domain.RelationLedTo, ""),
		connection("c2", "root", "sooner", domain.RelationEnabled, ""),
	}

	n := Synthesize(achievements, connections, "")

	root := n.Timeline[0]
	require.Len(t, root.NextSteps, 2)
	assert.Equal(t, "sooner", root.NextSteps[0].ID)
	assert.Equal(t, "later", root.NextSteps[1].ID)

	require.Len(t, root.RelationOut, 2)
	assert.Equal(t, "c1", root.RelationOut[0].ID)
	assert.Equal(t, domain.RelationLedTo, root.RelationOut[0].RelationType)
	assert.Equal(t, "later", root.RelationOut[0].ToID)

	assert.Equal(t, "Started with Root in 2018. Root led to Later. Root enabled Sooner.", n.Story)
}

func TestSynthesize_MultipleKindsBetweenSamePair(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("a", "A", "2020-01-01", 1),
		achievement("b", "B", "2020-02-01", 2),
	}
	connections := []domain.Connection{
		connection("c1", "a", "b", domain.RelationLedTo, ""),
		connection("c2", "a", "b", domain.RelationAppliedIn, ""),
	}

	n := Synthesize(achievements, connections, "")

	assert.Equal(t, "Started with A in 2020. A led to B. A was applied in B.", n.Story)
	assert.Len(t, n.Timeline[0].NextSteps, 2)
}

func TestSynthesize_IsDeterministic(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("x", "X", "2021-01-01", 1),
		achievement("y", "Y", "2021-01-01", 1),
		achievement("z", "Z", "2019-01-01", 1),
	}
	connections := []domain.Connection{
		connection("c1", "z", "x", domain.RelationLedTo, ""),
		connection("c2", "z", "y", domain.RelationResultedIn, "Then Y"),
		connection("c3", "x", "nowhere", domain.RelationEnabled, ""),
	}

	first, err := json.Marshal(Synthesize(achievements, connections, ""))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Synthesize(achievements, connections, ""))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestSynthesize_WireShape(t *testing.T) {
	n := Synthesize([]domain.Achievement{achievement("a", "A", "2020-01-01", 1)}, nil, "")

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	entry := decoded["timeline"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{}, entry["relation_out"])
	assert.Equal(t, []any{}, entry["next_steps"])
	assert.Equal(t, "A description", entry["description"])
}

func TestPhrase(t *testing.T) {
	assert.Equal(t, "was applied in", Phrase(domain.RelationAppliedIn))
	assert.Equal(t, "connected to", Phrase(""))
}

func TestSynthesize_FullTimeline(t *testing.T) {
	achievements := []domain.Achievement{
		achievement("job", "Job", "2022-01-01", 3),
		achievement("course", "Course", "2020-05-01", 1),
		achievement("cert", "Cert", "2021-03-01", 2),
	}
	connections := []domain.Connection{
		connection("c1", "course", "job", domain.RelationAppliedIn, ""),
		connection("c2", "course", "cert", domain.RelationLedTo, "The course made the exam easy"),
		connection("c3", "cert", "gone", domain.RelationEnabled, ""),
	}

	want := Narrative{
		Story: "Started with Course in 2020. Course was applied in Job. The course made the exam easy.",
		Timeline: []TimelineEntry{
			{
				ID: "course", Title: "Course", Date: day("2020-05-01"), Description: "Course description",
				RelationOut: []Relation{
					{ID: "c1", RelationType: domain.RelationAppliedIn, ToID: "job"},
					{ID: "c2", RelationType: domain.RelationLedTo, StoryText: "The course made the exam easy", ToID: "cert"},
				},
				NextSteps: []Step{
					{ID: "cert", Title: "Cert", Date: day("2021-03-01")},
					{ID: "job", Title: "Job", Date: day("2022-01-01")},
				},
			},
			{
				ID: "cert", Title: "Cert", Date: day("2021-03-01"), Description: "Cert description",
				RelationOut: []Relation{}, NextSteps: []Step{},
			},
			{
				ID: "job", Title: "Job", Date: day("2022-01-01"), Description: "Job description",
				RelationOut: []Relation{}, NextSteps: []Step{},
			},
		},
	}

	got := Synthesize(achievements, connections, "")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize() mismatch (-want +got):\n%s", diff)
	}
}
