package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/handler"
	"github.com/mcoot/gomoku-go/internal/api/middleware"
	rootmiddleware "github.com/mcoot/gomoku-go/internal/middleware"
	"github.com/mcoot/gomoku-go/internal/services/lobby"
	"github.com/mcoot/gomoku-go/internal/services/players"
	"github.com/mcoot/gomoku-go/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Players         *players.Service
	Registry        *registry.Registry
	LobbyController *lobby.Controller
	// WebSocket serves the live protocol on /ws
	WebSocket http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Players)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.Registry, cfg.Players)

	// Create middleware
	loggingMiddleware := rootmiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Live protocol endpoint; the socket handler recovers its own panics
	r.Handle("/ws", loggingMiddleware(cfg.WebSocket)).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", lobbyHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/lobby", lobbyHandler.Available).Methods(http.MethodGet)
	api.HandleFunc("/players/{username}", playerHandler.Get).Methods(http.MethodGet)

	return r
}
