package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-graph/backend/internal/auth"
	"growth-graph/backend/internal/service"
	"growth-graph/backend/internal/store"
)

func TestParseGraph_Demo(t *testing.T) {
	graph, err := parseGraph(demoGraph)
	require.NoError(t, err)
	assert.Len(t, graph.Achievements, 5)
	assert.Len(t, graph.Connections, 4)
	assert.Equal(t, "2019-09-01", graph.Achievements[0].Input.Date)
}

func TestParseGraph_UnknownReference(t *testing.T) {
	_, err := parseGraph([]byte(`
achievements:
  - key: a
    title: A
connections:
  - from: a
    to: missing
    relation: led_to
`))
	assert.Error(t, err)
}

func TestParseGraph_DuplicateKey(t *testing.T) {
	_, err := parseGraph([]byte(`
achievements:
  - key: a
    title: A
  - key: a
    title: B
`))
	assert.Error(t, err)
}

func TestSeed_DemoGraph(t *testing.T) {
	ctx := context.Background()
	svc := service.New(store.NewMemory(), auth.NewTokens([]byte("secret"), time.Hour), auth.NewPasswords(4))

	session, err := svc.Accounts.Register(ctx, service.RegisterInput{Name: "Demo User", Email: "demo@example.com", Password: "demo1234"})
	require.NoError(t, err)

	graph, err := parseGraph(demoGraph)
	require.NoError(t, err)
	require.NoError(t, seed(ctx, svc, session.User.ID, graph))

	n, err := svc.Narratives.ForOwner(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t,
		"Started with Intro to Programming in 2019. "+
			"Intro to Programming led to Personal Budget Tracker. "+
			"The budget tracker became the portfolio piece that landed the first job. "+
			"Cloud Practitioner enabled Junior Backend Engineer. "+
			"Junior Backend Engineer resulted in Team Impact Award.",
		n.Story)
	assert.Len(t, n.Timeline, 5)
}
