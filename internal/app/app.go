package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meterhub/internal/config"
	"meterhub/internal/db"
	"meterhub/internal/formula"
	httpserver "meterhub/internal/http"
	"meterhub/internal/http/handlers"
	"meterhub/internal/jobs"
	"meterhub/internal/redisstore"
	"meterhub/internal/repository"
	"meterhub/internal/service"
)

// App wires meterhub dependencies.
type App struct {
	server      *httpserver.Server
	scheduler   *jobs.Scheduler
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var (
		redisClient  *redis.Client
		contextStore *redisstore.ContextStore
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		contextStore = redisstore.NewContextStore(redisClient, cfg.ContextCacheTTL())
	}

	loc := cfg.Location()
	repos := repository.NewRepos(sqlDB)
	txRunner := &service.SQLTxRunner{DB: sqlDB}

	loader := service.NewContextLoader(repos.Meters, contextStore, logger)
	validator := service.NewValidator(logger)
	engine := formula.NewEngine(logger)
	efficiency := service.NewEfficiencyEvaluator(logger)

	ingestion := service.NewIngestionService(txRunner, validator, engine, efficiency, loc, logger)
	templates := service.NewTemplateService(txRunner, loader, logger)

	readingsHandler := handlers.NewReadingsHandler(ingestion, logger)
	templatesHandler := handlers.NewTemplatesHandler(templates, logger)

	routes := httpserver.Routes{
		IngestReading: readingsHandler.HandleIngest,
		MeterSummary: handlers.NewMeterSummaryHandler(handlers.SummariesDeps{
			Loader:    loader,
			Summaries: repos.Summaries,
		}),
		SetMainDef: templatesHandler.HandleSetMain,
		Health:     handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(ingestion, repos.Meters, txRunner, loc, logger)
		if err := scheduler.Register(cfg.Jobs.RecomputeSpec, cfg.Jobs.CompletenessSpec); err != nil {
			sqlDB.Close()
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, err
		}
	}

	return &App{
		server:      server,
		scheduler:   scheduler,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and the job scheduler.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	if a.scheduler != nil {
		a.scheduler.Start()
		group.Go(func() error {
			<-ctx.Done()
			a.scheduler.Stop()
			return nil
		})
	}
	group.Go(func() error {
		return a.server.Run(ctx)
	})

	return group.Wait()
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
