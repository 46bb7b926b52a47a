package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/umtracker/umtracker-api/internal/config"
	"github.com/umtracker/umtracker-api/internal/platform/botclient"
	"github.com/umtracker/umtracker-api/internal/platform/cache"
	"github.com/umtracker/umtracker-api/internal/platform/postgres"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/service"
	"github.com/umtracker/umtracker-api/internal/service/auth"
	"github.com/umtracker/umtracker-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	curatorStore store.CuratorStore

	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	recipientService  service.RecipientService
	assignmentService service.AssignmentService
	dashboardService  service.DashboardService
	catalogService    service.CatalogService
}

// loadPolicy reads the policy override file when one is configured and
// falls back to the built-in table otherwise.
func loadPolicy(fs afero.Fs, cfg config.PolicyConfig, logger *slog.Logger) (*policy.Engine, error) {
	if cfg.File == "" {
		return policy.NewEngine(policy.Default()), nil
	}
	table, err := policy.NewLoader(fs).Load(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	logger.Info("policy table loaded", slog.String("file", cfg.File))
	return policy.NewEngine(table), nil
}

// newApplication connects to the database and wires stores, services and
// the bot client. The caller owns cleanup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.wire(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) wire(ctx context.Context) error {
	cfg := app.config

	engine, err := loadPolicy(afero.NewOsFs(), cfg.Policy, app.logger)
	if err != nil {
		return err
	}

	app.curatorStore = postgres.NewPostgresCuratorStore(app.db, app.logger)

	var catalogs store.CatalogStore = postgres.NewPostgresCatalogStore(app.db, app.logger)
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg.Cache.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to configure redis: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			// Catalog reads fall through to Postgres when Redis is down.
			app.logger.Warn("redis unreachable at startup", slog.String("error", err.Error()))
		}
		app.redis = client
		catalogs = cache.NewCatalogCache(catalogs, client, cfg.Cache.TTL, app.logger)
	}

	tasks := postgres.NewPostgresTaskStore(app.db, app.logger)
	assignments := postgres.NewPostgresAssignmentStore(app.db, app.logger)
	reports := postgres.NewPostgresReportStore(app.db, app.logger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.recipientService, err = service.NewRecipientService(app.curatorStore, engine, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create recipient service: %w", err)
	}

	bot := botclient.New(cfg.Bot, nil, app.logger)
	app.assignmentService, err = service.NewAssignmentService(
		store.NewTransactor(app.db),
		service.AssignmentStores{
			Curators:    app.curatorStore,
			Catalogs:    catalogs,
			Tasks:       tasks,
			Assignments: assignments,
			Reports:     reports,
			DeliveryLog: postgres.NewPostgresDeliveryLogStore(app.db, app.logger),
		},
		engine,
		bot,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment service: %w", err)
	}

	app.dashboardService, err = service.NewDashboardService(tasks, assignments, reports, engine, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}

	app.catalogService, err = service.NewCatalogService(catalogs, engine, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		} else {
			app.logger.Info("database connection closed")
		}
	}
}
