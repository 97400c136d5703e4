package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api"
	"github.com/mcoot/gomoku-go/internal/config"
	"github.com/mcoot/gomoku-go/internal/factory"
)

type serveOptions struct {
	configPath string
	addr       string
	store      string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Long: `Run the game server. Clients speak the live protocol on /ws; a small
read-only JSON API lives under /api/v1.

Settings come from defaults, then .env, then --config, then GOMOKU_* environment
variables, then flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, serverCfg, newLogger(serverCfg, cfg.Verbose))
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address host:port (env: GOMOKU_ADDR)")
	cmd.Flags().StringVar(&opts.store, "store", "", "Player store: memory, sqlite, redis (env: GOMOKU_STORE)")

	return cmd
}

func loadServeConfig(cmd *cobra.Command, opts serveOptions) (config.Config, error) {
	serverCfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("addr") {
		if err := serverCfg.SetAddr(opts.addr); err != nil {
			return config.Config{}, err
		}
	}
	if cmd.Flags().Changed("store") {
		serverCfg.Store.Type = opts.store
	}
	if err := serverCfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return serverCfg, nil
}

// runServer serves until ctx is cancelled, then stops the HTTP server, the
// lobby workers and finally flushes the player store
func runServer(ctx context.Context, serverCfg config.Config, logger *slog.Logger) error {
	app, err := factory.New(ctx, serverCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Players:         app.Players,
		Registry:        app.Registry,
		LobbyController: app.Lobby,
		WebSocket:       app.WebSocket,
	})
	server := api.NewServer(router, api.ServerConfigFrom(serverCfg.Server), logger)

	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		app.Lobby.Run(workerCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("store", serverCfg.Store.Type),
		slog.Duration("turn_budget", serverCfg.Game.TurnBudget),
	)

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		serveErr = server.Shutdown(context.Background())
	}

	cancelWorkers()
	workers.Wait()

	if err := app.Close(context.Background()); err != nil {
		logger.Error("failed to close store", slog.String("error", err.Error()))
	}
	if serveErr != nil {
		return serveErr
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(serverCfg config.Config, verbose bool) *slog.Logger {
	level, err := serverCfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
