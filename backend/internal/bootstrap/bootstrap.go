// Package bootstrap opens the configured store for the server and scripts.
package bootstrap

import (
	"context"
	"fmt"

	"growth-graph/backend/internal/graph"
	"growth-graph/backend/internal/postgres"
	"growth-graph/backend/internal/store"
	"growth-graph/backend/pkg/config"
	"growth-graph/backend/pkg/logger"
)

// OpenStore connects the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreNeo4j:
		repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.StorePostgres:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.StoreMemory:
		logger.Get().Warn("Using in-memory store, data is lost on exit")
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

