package cmd

import (
	"context"
	"fmt"

	"github.com/relwatch/relwatch/internal/classify"
	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/internal/database"
	"github.com/relwatch/relwatch/internal/monitor"
	"github.com/relwatch/relwatch/internal/notify"
	"github.com/relwatch/relwatch/internal/source"
	"github.com/relwatch/relwatch/internal/store"
)

// services bundles the wired collaborators every subcommand needs.
type services struct {
	cfg        *config.Config
	db         database.DB
	store      *store.Store
	sources    *source.Gateway
	dispatcher *notify.Dispatcher
	checker    *monitor.Checker
}

// buildServices loads configuration, opens and migrates the database, and
// wires the monitoring stack. Callers must Close().
func buildServices(ctx context.Context, validate bool) (*services, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	st := store.New(db)

	sources, err := source.NewGateway(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("building version sources: %w", err)
	}

	oracle, err := classify.NewOracle(cfg.AI)
	if err != nil {
		db.Close()
		return nil, err
	}

	dispatcher := notify.NewDispatcher(cfg.Notify)
	checker := monitor.NewChecker(cfg.Monitor.Repos, sources, classify.New(oracle), dispatcher, st)

	return &services{
		cfg:        cfg,
		db:         db,
		store:      st,
		sources:    sources,
		dispatcher: dispatcher,
		checker:    checker,
	}, nil
}

func (s *services) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
