// Package graph stores users, achievements and connections in Neo4j.
// Achievements are nodes owned through (:User)-[:OWNS]->(:Achievement);
// connections are typed (:Achievement)-[:CONNECTS]->(:Achievement)
// relationships whose edge_key property carries the uniqueness constraint.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"growth-graph/backend/internal/store"
	apperrors "growth-graph/backend/pkg/errors"
	"growth-graph/backend/pkg/logger"
)

var _ store.Store = (*Repository)(nil)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// schema is applied idempotently by EnsureSchema. Relationship uniqueness
// constraints need Neo4j 5.7 or newer.
var schema = []string{
	"CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
	"CREATE CONSTRAINT user_username IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE",
	"CREATE CONSTRAINT achievement_id IF NOT EXISTS FOR (a:Achievement) REQUIRE a.id IS UNIQUE",
	"CREATE CONSTRAINT connection_id IF NOT EXISTS FOR ()-[r:CONNECTS]-() REQUIRE r.id IS UNIQUE",
	"CREATE CONSTRAINT connection_edge_key IF NOT EXISTS FOR ()-[r:CONNECTS]-() REQUIRE r.edge_key IS UNIQUE",
	"CREATE INDEX achievement_owner IF NOT EXISTS FOR (a:Achievement) ON (a.owner_id)",
	"CREATE INDEX achievement_date IF NOT EXISTS FOR (a:Achievement) ON (a.date)",
}

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Named("graph"),
	}
}

// Connect opens a driver, verifies connectivity and returns a repository
// with the schema applied.
func Connect(ctx context.Context, uri, user, password string) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewStoreFailed("create neo4j driver", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewStoreFailed("verify neo4j connectivity", err)
	}

	repo := NewRepository(driver)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return repo, nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// EnsureSchema creates the constraints and indexes the store relies on
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.write(ctx, stmt, nil); err != nil {
			return apperrors.NewStoreFailed("ensure schema", err)
		}
	}
	r.logger.Info("Neo4j schema ensured", zap.Int("statements", len(schema)))
	return nil
}

func (r *Repository) read(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	return r.run(ctx, neo4j.AccessModeRead, query, params)
}

func (r *Repository) write(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	return r.run(ctx, neo4j.AccessModeWrite, query, params)
}

func (r *Repository) run(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// violatedField maps a constraint violation to the field it protects.
func violatedField(err error) (string, bool) {
	var neoErr *neo4j.Neo4jError
	if !errors.As(err, &neoErr) || neoErr.Code != constraintViolation {
		return "", false
	}
	switch {
	case strings.Contains(neoErr.Msg, "`email`"):
		return "email", true
	case strings.Contains(neoErr.Msg, "`username`"):
		return "username", true
	case strings.Contains(neoErr.Msg, "`edge_key`"):
		return "relation", true
	}
	return "id", true
}

// storeError classifies a driver error for resource during op.
func storeError(resource, op string, err error) error {
	if field, ok := violatedField(err); ok {
		return apperrors.NewConflict(resource, field, err)
	}
	return apperrors.NewStoreFailed(op, fmt.Errorf("failed to %s: %w", op, err))
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
