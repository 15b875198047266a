package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"elder-risk-aggregator/internal/aggregator"
	"elder-risk-aggregator/internal/config"
	"elder-risk-aggregator/internal/docstore"
	"elder-risk-aggregator/internal/metrics"
	"elder-risk-aggregator/internal/scheduler"
	"elder-risk-aggregator/internal/service"
	"elder-risk-aggregator/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newStores connects to the document store and exposes its per-domain query
// capabilities. When the store is unreachable the pipeline still runs; every
// aggregation then resolves to the mock snapshot.
func (a *App) newStores(ctx context.Context) (aggregator.Stores, *mongo.Client) {
	client, err := docstore.Connect(ctx, a.Config.Docstore)
	if err != nil {
		a.Logger.Error().Err(err).Msg("document store unreachable; snapshots will be mocked")
		unavailable := docstore.Unavailable(err)
		return aggregator.Stores{
			Profiles:   unavailable,
			Chats:      unavailable,
			Moods:      unavailable,
			Vision:     unavailable,
			Activities: unavailable,
			Medicines:  unavailable,
			Alerts:     unavailable,
			RiskScores: unavailable,
		}, nil
	}

	store := docstore.NewStore(client.Database(a.Config.Docstore.Database))
	return aggregator.Stores{
		Profiles:   store,
		Chats:      store,
		Moods:      store,
		Vision:     store,
		Activities: store,
		Medicines:  store,
		Alerts:     store,
		RiskScores: store,
	}, client
}

func (a *App) newAggregator(stores aggregator.Stores) *aggregator.Aggregator {
	aggCfg := a.Config.Aggregation
	return aggregator.New(stores, aggregator.Options{
		DomainTimeout:     aggCfg.DomainTimeout,
		RiskHistoryLimit:  aggCfg.RiskHistoryLimit,
		RecentEventsLimit: aggCfg.RecentEventsLimit,
		Keywords: metrics.Keywords{
			Loneliness: aggCfg.LonelinessKeywords,
			Health:     aggCfg.HealthKeywords,
		},
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func disconnect(client *mongo.Client, logger zerolog.Logger) {
	if client == nil {
		return
	}
	if err := client.Disconnect(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("document store disconnect failed")
	}
}

// Run executes the long-running snapshot refresh service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, client := a.newStores(ctx)
	defer disconnect(client, a.Logger)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; snapshot persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	agg := a.newAggregator(stores)

	var snapshotStore storage.SnapshotStore
	if store != nil {
		snapshotStore = store
	}

	svc := service.New(a.Config, sched, agg, snapshotStore, a.Logger)

	a.Logger.Info().
		Int("subjects", len(a.Config.Subjects)).
		Msg("starting snapshot refresh service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("snapshot refresh service stopped")
	return nil
}
