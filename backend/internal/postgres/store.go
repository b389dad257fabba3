// Package postgres implements the store contract on PostgreSQL using pgx,
// with the schema managed by embedded goose migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"growth-graph/backend/internal/postgres/migrations"
	"growth-graph/backend/internal/store"
	apperrors "growth-graph/backend/pkg/errors"
	"growth-graph/backend/pkg/logger"
)

const uniqueViolation = "23505"

var _ store.Store = (*Store)(nil)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed store.Store
type Store struct {
	pool   *pgxpool.Pool
	db     querier
	logger *zap.Logger
}

// Open connects to databaseURL, runs migrations and returns the store.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, apperrors.NewStoreFailed("open postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewStoreFailed("ping postgres", err)
	}

	s := &Store{pool: pool, db: pool, logger: logger.Named("postgres")}
	if err := s.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = goose.UpContext

// RunMigrations applies the embedded goose migrations.
func (s *Store) RunMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return apperrors.NewStoreFailed("set goose dialect", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return apperrors.NewStoreFailed("run migrations", err)
	}
	s.logger.Info("Postgres migrations applied")
	return nil
}

// Close releases the pool
func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// inTx runs fn against a copy of the store bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) inTx(ctx context.Context, fn func(tx *Store) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, db: tx, logger: s.logger})
	})
	if err != nil && apperrors.TypeOf(err) == "" {
		return apperrors.NewStoreFailed("transaction", err)
	}
	return err
}

// storeError classifies a pgx error for resource during op.
func storeError(resource, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.NewConflict(resource, constraintField(pgErr.ConstraintName), err)
	}
	return apperrors.NewStoreFailed(op, fmt.Errorf("db error: %w", err))
}

func constraintField(name string) string {
	switch name {
	case "users_email_key":
		return "email"
	case "users_username_key":
		return "username"
	case "connections_edge_key":
		return "relation"
	}
	return "id"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func limitClause(limit int) string {
	if limit > 0 {
		return fmt.Sprintf(" LIMIT %d", limit)
	}
	return ""
}
