package app

import (
	"context"
	"fmt"
	"path/filepath"

	"smart-grocery/internal/config"
	"smart-grocery/internal/cooccurrence"
	"smart-grocery/internal/database"
	"smart-grocery/internal/datemath"
	"smart-grocery/internal/inventory"
	"smart-grocery/internal/llm"
	"smart-grocery/internal/logging"
	"smart-grocery/internal/metrics"
	"smart-grocery/internal/recommend"
	"smart-grocery/internal/shopping"
	"smart-grocery/internal/substitution"

	"github.com/sirupsen/logrus"
)

const substitutionAgent = "substitution"

// Options overrides collaborators that are otherwise built from Config.
type Options struct {
	Clock   datemath.Clock
	TextGen llm.TextGenerator
}

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger *logrus.Logger

	db        *database.DB
	llmClient llm.Client

	Inventory   *inventory.Store
	Journal     *cooccurrence.Journal
	Recommender *recommend.Engine
	Resolver    *substitution.Resolver
	Shopping    *shopping.List
	// Metrics is nil when running on in-memory repositories.
	Metrics *metrics.Store
}

// New wires the application: it opens the database (or in-memory
// repositories), loads the inventory, replays basket history into the
// co-occurrence model and builds the substitution sources.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts Options) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	var (
		itemRepo   inventory.Repository
		basketRepo cooccurrence.BasketRepository
		listRepo   shopping.Store
	)
	if cfg.UsesMemory() {
		itemRepo = inventory.NewMemoryRepository()
		basketRepo = cooccurrence.NewMemoryBasketRepository()
		listRepo = shopping.NewMemoryRepository()
	} else {
		db, err := database.NewDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
		itemRepo = inventory.NewSQLRepository(db.SQL)
		basketRepo = cooccurrence.NewSQLBasketRepository(db.SQL, logger)
		listRepo = shopping.NewRepository(db.SQL)
		a.Metrics = metrics.NewStore(db.SQL)
	}

	a.Inventory = inventory.NewStore(itemRepo, opts.Clock)
	if err := a.Inventory.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	model := cooccurrence.NewModel()
	a.Journal = cooccurrence.NewJournal(basketRepo, model)
	n, err := a.Journal.Replay(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to replay basket history: %w", err)
	}
	a.Recommender = recommend.NewEngine(model)

	resolver, err := a.buildResolver(ctx, opts.TextGen)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Resolver = resolver
	a.Shopping = shopping.NewList(listRepo, resolver)

	logger.WithFields(logrus.Fields{
		"items":   len(a.Inventory.List()),
		"baskets": n,
		"backend": a.backendName(),
	}).Info("application initialized")

	return a, nil
}

func (a *App) buildResolver(ctx context.Context, textGen llm.TextGenerator) (*substitution.Resolver, error) {
	table := substitution.DefaultTable()
	if a.cfg.SubstitutionsPath != "" {
		loaded, err := substitution.LoadTableFile(a.cfg.SubstitutionsPath, table)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	sources := []substitution.Source{table}

	if textGen == nil {
		client, err := llm.NewFromConfig(ctx, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		if client != nil {
			a.llmClient = client
			textGen = client
		}
	}
	if textGen != nil {
		if a.Metrics != nil {
			metered := llm.NewMeteredGenerator(textGen, substitutionAgent, a.Metrics)
			metered.OnError = func(err error) {
				logging.LogError(a.logger, "app", "buildResolver", "record llm usage", nil, err)
			}
			textGen = metered
		}
		sources = append(sources, substitution.NewCachedSource(substitution.NewLLMSource(textGen), 0))
	}

	resolver := substitution.NewResolver(sources...)
	resolver.OnSourceError = func(source int, err error) {
		logging.LogError(a.logger, "substitution", "Suggest", "source lookup failed", map[string]int{"source": source}, err)
	}
	return resolver, nil
}

func (a *App) backendName() string {
	if a.db == nil {
		return "memory"
	}
	return "sqlite"
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *logrus.Logger {
	return a.logger
}

// Health collects runtime metrics including the size of the data directory.
func (a *App) Health() metrics.SysHealth {
	dataDir := ""
	if a.db != nil {
		dataDir = filepath.Dir(a.cfg.DBPath)
	}
	return metrics.GetSysHealth(dataDir)
}

// CleanupMetrics deletes LLM usage records older than days.
func (a *App) CleanupMetrics(days int) (int64, error) {
	if a.Metrics == nil {
		return 0, fmt.Errorf("metrics require a database; GROCERY_DB_PATH is %q", a.cfg.DBPath)
	}
	return a.Metrics.Cleanup(days)
}

// Close releases the database and LLM client.
func (a *App) Close() error {
	var firstErr error
	if a.llmClient != nil {
		if err := a.llmClient.Close(); err != nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
