package commands

import (
	"context"
	"fmt"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/internal/fundamentals"
	"github.com/octantlabs/octant/internal/portfolio"
	"github.com/octantlabs/octant/internal/rebalance"
	"github.com/octantlabs/octant/internal/scoring"
	"github.com/octantlabs/octant/internal/selection"
	"github.com/octantlabs/octant/pkg/config"
	"github.com/octantlabs/octant/pkg/database"
	"github.com/octantlabs/octant/pkg/logger"
	"github.com/octantlabs/octant/pkg/redis"
)

// app bundles everything a command needs, wired once per invocation.
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.DB // nil without DATABASE_URL
	rdb         *redis.Client
	provider    contracts.FundamentalsProvider
	static      *fundamentals.StaticProvider // set in dev fallback mode
	store       contracts.PortfolioStore
	coordinator *rebalance.Coordinator
}

// buildApp wires config, logging, storage, the provider chain, and the
// coordinator. Missing infrastructure degrades: no DATABASE_URL means an
// in-memory store, no PROVIDER_BASE_URL means the built-in dev universe.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// Provider chain: HTTP client or dev fallback, then optional cache.
	if cfg.Provider.BaseURL != "" {
		a.provider = fundamentals.NewClient(cfg.Provider, log)
	} else {
		log.Warn("PROVIDER_BASE_URL not set, using built-in dev universe")
		a.static = fundamentals.DevUniverse()
		a.provider = a.static
	}

	a.rdb, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if a.rdb.Enabled() {
		cache := redis.NewCache(a.rdb, "octant")
		a.provider = fundamentals.NewCachedProvider(a.provider, cache, cfg.Provider.CacheTTL, log)
	}

	// Stores.
	var archiver rebalance.ScoreArchiver
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db

		runRepo := portfolio.NewRepository(db, log)
		if err := runRepo.Init(ctx); err != nil {
			a.Close()
			return nil, err
		}
		scoreRepo := selection.NewRepository(db)
		if err := scoreRepo.Init(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.store = runRepo
		archiver = scoreRepo
	} else {
		log.Warn("DATABASE_URL not set, runs will not persist")
		a.store = portfolio.NewMemoryStore()
	}

	scorer := scoring.NewCompositeScorer(scoring.NewPillarScorer(scoring.DefaultBands()), log)
	a.coordinator = rebalance.NewCoordinator(
		a.provider,
		a.store,
		scorer,
		selection.NewScreener(selection.DefaultScreenerConfig(), log),
		selection.NewRanker(log),
		portfolio.NewAllocator(log),
		portfolio.NewValidator(log),
		archiver,
		rebalance.Config{Concurrency: cfg.Rebalance.Concurrency},
		log,
	)

	return a, nil
}

// Close releases database and redis connections.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}
