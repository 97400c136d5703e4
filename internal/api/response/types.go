package response

import "github.com/mcoot/gomoku-go/internal/model"

// Player represents a player's public record in API responses
type Player struct {
	Username    string `json:"username"`
	Nationality string `json:"nationality"`
	Victories   int    `json:"victories"`
	Defeats     int    `json:"defeats"`
	TimeSpentMs int64  `json:"time_spent_ms"`
	Theme       string `json:"theme"`
	HasPhoto    bool   `json:"has_photo"`
}

// PlayerFromProfile converts a model.Profile; the photo blob stays on the live protocol
func PlayerFromProfile(p model.Profile) Player {
	return Player{
		Username:    p.Username,
		Nationality: p.Nationality,
		Victories:   p.Victories,
		Defeats:     p.Defeats,
		TimeSpentMs: p.TimeSpentMs,
		Theme:       p.Theme,
		HasPhoto:    len(p.Photo) > 0,
	}
}

// PlayersFromProfiles converts a list, preserving order
func PlayersFromProfiles(profiles []model.Profile) []Player {
	out := make([]Player, len(profiles))
	for i, p := range profiles {
		out[i] = PlayerFromProfile(p)
	}
	return out
}

// Leaderboard is the response for the ranking endpoint
type Leaderboard struct {
	Players []Player `json:"players"`
}

// Lobby lists the players currently ready to accept a challenge
type Lobby struct {
	Available []Player `json:"available"`
}

// Health reports liveness plus a few counters
type Health struct {
	Status      string `json:"status"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
	Games       int    `json:"games"`
}
