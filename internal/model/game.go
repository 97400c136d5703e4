package model

import "time"

// GameID uniquely identifies a game session
type GameID string

// MoveOutcome is the result of a move attempt against a session
type MoveOutcome int

const (
	MoveAccepted MoveOutcome = iota
	MoveInvalid
	MoveNotYourTurn
	MoveWin
	MoveTimeout
)

// Err returns the sentinel error for a refused or timed-out move, nil otherwise
func (o MoveOutcome) Err() error {
	switch o {
	case MoveAccepted, MoveWin:
		return nil
	case MoveNotYourTurn:
		return ErrNotYourTurn
	case MoveTimeout:
		return ErrTimeout
	default:
		return ErrInvalidMove
	}
}

// EndReason records why a session finished
type EndReason string

const (
	EndReasonWin        EndReason = "win"
	EndReasonForfeit    EndReason = "forfeit"
	EndReasonTimeout    EndReason = "timeout"
	EndReasonDisconnect EndReason = "disconnect"
)

// Snapshot is a read-only view of a session at a point in time
type Snapshot struct {
	GameID          GameID    `json:"game_id"`
	Board           []string  `json:"board"`
	NextPlayerColor string    `json:"next_player_color"`
	BlackPlayer     string    `json:"black_player"`
	WhitePlayer     string    `json:"white_player"`
	BlackTimeMs     int64     `json:"black_time_ms"`
	WhiteTimeMs     int64     `json:"white_time_ms"`
	Timestamp       time.Time `json:"timestamp"`
}
