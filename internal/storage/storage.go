// Package storage opens the repository backend selected by DB_URI.
package storage

import (
	"context"
	"fmt"

	"github.com/dom/chat-server/internal/config"
	"github.com/dom/chat-server/internal/repository"
	"github.com/dom/chat-server/internal/repository/mongodb"
	"github.com/dom/chat-server/internal/repository/relational"
	"github.com/rs/zerolog"
)

// Store owns the connection behind a set of repositories. Close it on shutdown.
type Store struct {
	Repos   *repository.Repositories
	Backend config.Backend

	close func(ctx context.Context) error
}

func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendMongo:
		client, err := mongodb.NewClient(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("mongodb: %w", err)
		}
		db := client.Database(cfg.DatabaseName)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongodb: %w", err)
		}
		return &Store{
			Repos:   mongodb.NewRepositories(db),
			Backend: backend,
			close:   client.Disconnect,
		}, nil

	case config.BackendPostgres:
		db, err := relational.NewConnection(cfg.DatabaseURI, log)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &Store{
			Repos:   relational.NewRepositories(db),
			Backend: backend,
			close:   func(context.Context) error { return relational.Close(db) },
		}, nil

	case config.BackendSQLite:
		db, err := relational.NewSQLiteConnection(cfg.SQLitePath(), log)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return &Store{
			Repos:   relational.NewRepositories(db),
			Backend: backend,
			close:   func(context.Context) error { return relational.Close(db) },
		}, nil
	}

	return nil, fmt.Errorf("unsupported backend %q", backend)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
