package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/config"
	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/services/lobby"
	"github.com/mcoot/gomoku-go/internal/services/players"
	"github.com/mcoot/gomoku-go/internal/services/registry"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/storage/memory"
	redisstorage "github.com/mcoot/gomoku-go/internal/storage/redis"
	"github.com/mcoot/gomoku-go/internal/storage/sqlite"
	"github.com/mcoot/gomoku-go/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	Config config.Config

	// Storage
	Store storage.PlayerStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Players  *players.Service
	Registry *registry.Registry
	Lobby    *lobby.Controller

	// Transport
	WebSocket *ws.Handler

	logger *slog.Logger
}

// New opens the configured player store, loads the player collection and
// wires every service against it
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := OpenStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	app.Players.Load(ctx)
	return app, nil
}

// OpenStore creates the player store selected by cfg
func OpenStore(cfg config.StoreConfig, logger *slog.Logger) (storage.PlayerStore, error) {
	switch cfg.Type {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case config.StoreRedis:
		redisCfg := redisstorage.DefaultConfig()
		if cfg.RedisURL != "" {
			redisCfg.URL = cfg.RedisURL
		}
		if cfg.RedisPool > 0 {
			redisCfg.PoolSize = cfg.RedisPool
		}
		store, err := redisstorage.New(redisCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}
		return store, nil
	default:
		return nil, errors.New("invalid store type: must be 'memory', 'sqlite' or 'redis'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.PlayerStore, clk clock.Clock, rnd random.Random, cfg config.Config, logger *slog.Logger) *App {
	playerService := players.New(store, clk, players.Config{
		BcryptCost:        cfg.Accounts.BcryptCost,
		MinPasswordLength: cfg.Accounts.MinPasswordLength,
		DefaultTheme:      cfg.Accounts.DefaultTheme,
		MaxPhotoBytes:     cfg.Accounts.MaxPhotoBytes,
	}, logger)
	sessions := registry.New(cfg.Game.TurnBudget, clk, logger)
	lobbyController := lobby.NewController(playerService, sessions, clk, rnd, lobby.Config{
		BroadcastInterval: cfg.Lobby.BroadcastInterval,
		SweepInterval:     cfg.Lobby.SweepInterval,
	}, logger)

	return &App{
		Config:    cfg,
		Store:     store,
		Clock:     clk,
		Random:    rnd,
		Players:   playerService,
		Registry:  sessions,
		Lobby:     lobbyController,
		WebSocket: ws.NewHandler(lobbyController, logger),
		logger:    logger,
	}
}

// Close flushes the player collection and releases the store
func (a *App) Close(ctx context.Context) error {
	a.Players.Flush(ctx)
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	a.logger.Info("player store closed", slog.Int("players", a.Players.Count()))
	return nil
}
