package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/apierr"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/services/players"
)

// PlayerHandler serves read-only player records
type PlayerHandler struct {
	players *players.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *players.Service) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Leaderboard{
		Players: response.PlayersFromProfiles(h.players.Leaderboard()),
	})
}

// Get handles GET /api/v1/players/{username}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(mux.Vars(r)["username"])
	if username == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	}

	profile, err := h.players.Profile(username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromProfile(profile))
}
