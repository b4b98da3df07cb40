// Command reindex rebuilds the group search index from the relational store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/internal/search"
	"github.com/anonto42/groupnet/backend/pkg/config"
	"github.com/anonto42/groupnet/backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat))

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("reindex: failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.SearchBackend != config.SearchMongo {
		return fmt.Errorf("SEARCH_BACKEND=%q has nothing persistent to rebuild", cfg.SearchBackend)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	if db.Mongo == nil {
		return fmt.Errorf("MongoDB is unreachable")
	}

	mirror := search.NewMirror(search.NewIndex(cfg.SearchBackend, db.Mongo, cfg.MongoDatabase),
		search.WithTimeout(cfg.SearchTimeout))
	groups, err := repositories.NewSQLGroupRepository(repositories.NewStore(db.SQL), mirror).GetGroups(ctx)
	if err != nil {
		return err
	}

	entities := make([]models.Entity, 0, len(groups))
	for i := range groups {
		entities = append(entities, &groups[i])
	}
	n := mirror.Reindex(ctx, entities)
	slog.Info("reindex: done", "indexed", n, "total", len(entities))
	if n != len(entities) {
		return fmt.Errorf("%d of %d groups could not be indexed", len(entities)-n, len(entities))
	}
	return nil
}
