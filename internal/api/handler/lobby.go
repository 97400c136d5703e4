package handler

import (
	"net/http"

	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/services/lobby"
	"github.com/mcoot/gomoku-go/internal/services/players"
	"github.com/mcoot/gomoku-go/internal/services/registry"
)

// LobbyHandler exposes the lobby state outside the live protocol
type LobbyHandler struct {
	lobby    *lobby.Controller
	registry *registry.Registry
	players  *players.Service
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobby *lobby.Controller, registry *registry.Registry, players *players.Service) *LobbyHandler {
	return &LobbyHandler{lobby: lobby, registry: registry, players: players}
}

// Available handles GET /api/v1/lobby
func (h *LobbyHandler) Available(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Lobby{
		Available: response.PlayersFromProfiles(h.lobby.Available()),
	})
}

// Health handles GET /api/v1/health
func (h *LobbyHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Players:     h.players.Count(),
		Connections: len(h.lobby.Actors()),
		Games:       h.registry.SessionCount(),
	})
}
