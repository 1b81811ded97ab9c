package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udaytamma/ProfessorGemini/db"
	"github.com/udaytamma/ProfessorGemini/internal/config"
	"github.com/udaytamma/ProfessorGemini/internal/gemini"
	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
	"github.com/udaytamma/ProfessorGemini/internal/log"
	"github.com/udaytamma/ProfessorGemini/internal/syncer"
)

// app bundles the wired dependencies every subcommand needs: validated
// config, migrated database pool, the knowledge store and the syncer.
// Commands construct it in RunE so `--help` never touches the database.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	store  *knowledge.Store
	client *gemini.Client
	syncer *syncer.Syncer
	logger log.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{Level: parseLevel(logLevel)})

	if err := db.Migrate(cfg.DSN(), logger); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	client, err := gemini.NewClient(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store := knowledge.New(pool, client, logger)

	return &app{
		cfg:    cfg,
		pool:   pool,
		store:  store,
		client: client,
		syncer: syncer.New(store, cfg, logger),
		logger: logger,
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
