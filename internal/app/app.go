// Package app initializes and holds the long-lived services of the pipeline,
// acting as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/up2d8/pipeline/internal/api"
	"github.com/up2d8/pipeline/internal/archive"
	"github.com/up2d8/pipeline/internal/clock/system"
	"github.com/up2d8/pipeline/internal/config"
	"github.com/up2d8/pipeline/internal/discovery"
	"github.com/up2d8/pipeline/internal/logging"
	"github.com/up2d8/pipeline/internal/pipeline"
	"github.com/up2d8/pipeline/internal/queue"
	queueMemory "github.com/up2d8/pipeline/internal/queue/memory"
	"github.com/up2d8/pipeline/internal/render"
	"github.com/up2d8/pipeline/internal/search"
	"github.com/up2d8/pipeline/internal/snapshot"
	storeMemory "github.com/up2d8/pipeline/internal/store/memory"
	"github.com/up2d8/pipeline/internal/store/postgres"
	"github.com/up2d8/pipeline/internal/worker"
)

// App holds the shared services every command builds on: logger, stores,
// the task queue, the search client, and the snapshot store. It is
// initialized once at startup and fails fast when a critical service cannot
// be reached.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	articles    pipeline.ArticleStore
	analytics   pipeline.AnalyticsStore
	subscribers pipeline.SubscriberStore
	queue       pipeline.TaskQueue
	search      pipeline.SearchClient
	snapshots   pipeline.SnapshotStore
	clock       pipeline.Clock

	pool poolCloser // nil for the memory provider
}

type poolCloser interface {
	Close()
}

// New builds the App from configuration.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		clock:  system.Clock{},
	}

	if err := a.initStores(ctx); err != nil {
		return nil, err
	}
	if err := a.initQueue(ctx); err != nil {
		return nil, err
	}
	if err := a.initSearch(ctx); err != nil {
		return nil, err
	}
	if err := a.initSnapshots(ctx); err != nil {
		return nil, err
	}

	logger.Info("application services initialized",
		zap.String("db_provider", cfg.DB.Provider),
		zap.String("queue_provider", cfg.Queue.Provider),
		zap.String("search_provider", cfg.Search.Provider),
		zap.String("snapshot_provider", cfg.Snapshot.Provider),
	)
	return a, nil
}

func (a *App) initStores(ctx context.Context) error {
	switch a.cfg.DB.Provider {
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:      a.cfg.DB.DSN,
			MaxConns: a.cfg.DB.MaxConns,
			MinConns: a.cfg.DB.MinConns,
		})
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		articles, err := postgres.NewArticleStore(pool)
		if err != nil {
			return err
		}
		analytics, err := postgres.NewAnalyticsStore(pool)
		if err != nil {
			return err
		}
		subscribers, err := postgres.NewSubscriberStore(pool)
		if err != nil {
			return err
		}
		a.pool = pool
		a.articles = articles
		a.analytics = analytics
		a.subscribers = subscribers
	case "memory":
		store := storeMemory.NewStore()
		a.articles = store
		a.analytics = store
		a.subscribers = store
	default:
		return fmt.Errorf("unknown db provider: %s", a.cfg.DB.Provider)
	}
	return nil
}

func (a *App) initQueue(ctx context.Context) error {
	switch a.cfg.Queue.Provider {
	case "pubsub":
		q, err := queue.NewPubSubQueue(ctx,
			a.cfg.Queue.ProjectID, a.cfg.Queue.TopicID, a.cfg.Queue.SubscriptionID, a.logger)
		if err != nil {
			return fmt.Errorf("init pubsub queue: %w", err)
		}
		a.queue = q
	case "memory":
		a.queue = queueMemory.NewQueue(a.cfg.Queue.Depth)
	default:
		return fmt.Errorf("unknown queue provider: %s", a.cfg.Queue.Provider)
	}
	return nil
}

func (a *App) initSearch(ctx context.Context) error {
	switch a.cfg.Search.Provider {
	case "google":
		client, err := search.NewGoogleClient(ctx, a.cfg.Search.APIKey, a.cfg.Search.EngineID)
		if err != nil {
			return fmt.Errorf("init search client: %w", err)
		}
		a.search = client
	case "noop":
		a.search = search.NoOpClient{}
	default:
		return fmt.Errorf("unknown search provider: %s", a.cfg.Search.Provider)
	}
	return nil
}

func (a *App) initSnapshots(ctx context.Context) error {
	switch a.cfg.Snapshot.Provider {
	case "gcs":
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		store, err := snapshot.NewGCSStore(client, a.cfg.Snapshot.Bucket)
		if err != nil {
			return err
		}
		a.snapshots = store
	case "memory":
		a.snapshots = snapshot.NewMemoryStore()
	case "noop":
		a.snapshots = snapshot.NoOpStore{}
	default:
		return fmt.Errorf("unknown snapshot provider: %s", a.cfg.Snapshot.Provider)
	}
	return nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Queue returns the crawl task queue.
func (a *App) Queue() pipeline.TaskQueue {
	return a.queue
}

// DiscoveryRunner builds the topic discovery pass from the shared services.
func (a *App) DiscoveryRunner() *discovery.Runner {
	return discovery.NewRunner(
		a.subscribers,
		a.search,
		a.articles,
		a.queue,
		a.analytics,
		a.clock,
		discovery.Config{
			QueryTemplate:   a.cfg.Discovery.QueryTemplate,
			ResultsPerTopic: a.cfg.Discovery.ResultsPerTopic,
		},
		a.logger.Named("discovery"),
	)
}

// Sweeper builds the archival sweeper from the shared services.
func (a *App) Sweeper() *archive.Sweeper {
	return archive.NewSweeper(
		a.articles,
		a.analytics,
		a.clock,
		archive.Config{
			ArticleDays:   a.cfg.Retention.ArticleDays,
			AnalyticsDays: a.cfg.Retention.AnalyticsDays,
		},
		a.logger.Named("archive"),
	)
}

// APIServer builds the HTTP trigger server from the shared services.
func (a *App) APIServer() *api.Server {
	return api.NewServer(a.queue, a.cfg, a.logger.Named("api"))
}

// NewWorker starts the headless renderer and builds the crawl worker around
// it. The returned cleanup stops the browser and must be called when the
// worker finishes.
func (a *App) NewWorker() (*worker.Worker, func() error, error) {
	renderer, err := render.NewChromedpRenderer(render.Config{
		NavTimeout:     a.cfg.Crawler.NavTimeout,
		UserAgent:      a.cfg.Crawler.UserAgent,
		MaxConcurrency: a.cfg.Crawler.RenderConcurrency,
		DomainQPS:      a.cfg.Crawler.DomainQPS,
	}, a.logger.Named("render"))
	if err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}

	w := worker.New(
		a.queue,
		renderer,
		nil,
		a.articles,
		a.snapshots,
		a.clock,
		worker.Config{
			SnapshotPrefix: a.cfg.Snapshot.Prefix,
			RetryTransient: a.cfg.Crawler.RetryTransient,
		},
		a.logger.Named("worker"),
	)
	return w, renderer.Close, nil
}

// Close shuts down the shared services. It is called once after the active
// command finishes.
func (a *App) Close() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.logger.Warn("error closing task queue", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}
