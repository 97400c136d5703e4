package game

import (
	"sync"
	"time"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/model"
)

// axes are the four directions scanned for a winning run
var axes = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal
	{1, -1}, // anti-diagonal
}

// Session is the authoritative rules engine for one match.
// All methods are safe for concurrent use; each call is linearizable.
type Session struct {
	mu sync.Mutex

	id     model.GameID
	black  string
	white  string
	budget time.Duration
	clock  clock.Clock

	board     model.Board
	next      model.Color
	remaining map[model.Color]time.Duration
	turnStart time.Time
	moves     int

	startedAt time.Time
	done      bool
	endedAt   time.Time
	winner    model.Color
	reason    model.EndReason
}

// Result summarises a finished session for settlement
type Result struct {
	GameID      model.GameID
	Winner      string
	Loser       string
	WinnerSpent time.Duration
	LoserSpent  time.Duration
	Duration    time.Duration
	Reason      model.EndReason
}

// NewSession creates an active session with black to move and both clocks at budget
func NewSession(id model.GameID, black, white string, budget time.Duration, clk clock.Clock) *Session {
	now := clk.Now()
	return &Session{
		id:     id,
		black:  black,
		white:  white,
		budget: budget,
		clock:  clk,
		next:   model.Black,
		remaining: map[model.Color]time.Duration{
			model.Black: budget,
			model.White: budget,
		},
		turnStart: now,
		startedAt: now,
	}
}

// ID returns the session id
func (s *Session) ID() model.GameID {
	return s.id
}

// Black returns the username playing black
func (s *Session) Black() string {
	return s.black
}

// White returns the username playing white
func (s *Session) White() string {
	return s.white
}

// ColorOf returns the colour played by username, or Empty if not a participant
func (s *Session) ColorOf(username string) model.Color {
	key := model.UsernameKey(username)
	switch key {
	case model.UsernameKey(s.black):
		return model.Black
	case model.UsernameKey(s.white):
		return model.White
	default:
		return model.Empty
	}
}

// Opponent returns the other participant's username, or "" if username is not playing
func (s *Session) Opponent(username string) string {
	switch s.ColorOf(username) {
	case model.Black:
		return s.white
	case model.White:
		return s.black
	default:
		return ""
	}
}

// CurrentPlayer returns the username whose turn it is
func (s *Session) CurrentPlayer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerFor(s.next)
}

// IsFinished reports whether the session has reached a terminal state
func (s *Session) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished()
}

// AttemptMove applies a stone placement by username at (row, col)
func (s *Session) AttemptMove(row, col int, username string) model.MoveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished() {
		return model.MoveInvalid
	}
	if s.expired() {
		s.timeout()
		return model.MoveTimeout
	}

	color := s.ColorOf(username)
	if color != s.next {
		return model.MoveNotYourTurn
	}

	pos := model.Position{Row: row, Col: col}
	if !model.InBounds(pos) || s.board.Get(pos) != model.Empty {
		return model.MoveInvalid
	}

	now := s.clock.Now()
	s.charge(color, now)
	s.board[row][col] = color
	s.moves++

	for _, axis := range axes {
		if s.board.RunLength(pos, axis[0], axis[1]) >= model.WinLength {
			s.end(color, model.EndReasonWin, now)
			return model.MoveWin
		}
	}

	s.next = color.Opponent()
	s.turnStart = now
	return model.MoveAccepted
}

// Forfeit ends the session with the other participant as winner.
// It returns true only when this call performed the transition.
func (s *Session) Forfeit(by string) bool {
	return s.resign(by, model.EndReasonForfeit)
}

// Abandon is Forfeit recorded as a disconnect
func (s *Session) Abandon(by string) bool {
	return s.resign(by, model.EndReasonDisconnect)
}

func (s *Session) resign(by string, reason model.EndReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	color := s.ColorOf(by)
	if s.finished() || color == model.Empty {
		return false
	}
	now := s.clock.Now()
	if color == s.next {
		s.charge(color, now)
	}
	s.end(color.Opponent(), reason, now)
	return true
}

// IsCurrentPlayerTimeExpired reports whether the mover has run out of time
func (s *Session) IsCurrentPlayerTimeExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finished() && s.expired()
}

// TimeoutCurrentPlayer ends the session in favour of the non-mover.
// It returns true only when this call performed the transition.
func (s *Session) TimeoutCurrentPlayer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished() {
		return false
	}
	s.timeout()
	return true
}

// Snapshot returns the current board and clocks without charging time
func (s *Session) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	black := s.remaining[model.Black]
	white := s.remaining[model.White]
	if !s.finished() {
		accrued := s.left()
		if s.next == model.Black {
			black = accrued
		} else {
			white = accrued
		}
	}

	return model.Snapshot{
		GameID:          s.id,
		Board:           s.board.Rows(),
		NextPlayerColor: s.next.String(),
		BlackPlayer:     s.black,
		WhitePlayer:     s.white,
		BlackTimeMs:     black.Milliseconds(),
		WhiteTimeMs:     white.Milliseconds(),
		Timestamp:       now,
	}
}

// Result returns the settlement summary, or false while the session is active
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished() {
		return Result{}, false
	}
	loser := s.winner.Opponent()
	return Result{
		GameID:      s.id,
		Winner:      s.playerFor(s.winner),
		Loser:       s.playerFor(loser),
		WinnerSpent: s.spent(s.winner),
		LoserSpent:  s.spent(loser),
		Duration:    s.endedAt.Sub(s.startedAt),
		Reason:      s.reason,
	}, true
}

// Moves returns the number of stones placed
func (s *Session) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}

func (s *Session) finished() bool {
	return s.done
}

func (s *Session) expired() bool {
	return s.left() <= 0
}

// left is the mover's budget minus the running turn, floored at zero
func (s *Session) left() time.Duration {
	d := s.remaining[s.next] - clock.Elapsed(s.clock, s.turnStart)
	if d < 0 {
		return 0
	}
	return d
}

func (s *Session) timeout() {
	s.remaining[s.next] = 0
	s.end(s.next.Opponent(), model.EndReasonTimeout, s.clock.Now())
}

func (s *Session) charge(color model.Color, now time.Time) {
	left := s.remaining[color] - now.Sub(s.turnStart)
	if left < 0 {
		left = 0
	}
	s.remaining[color] = left
}

func (s *Session) end(winner model.Color, reason model.EndReason, now time.Time) {
	s.winner = winner
	s.reason = reason
	s.done = true
	s.endedAt = now
	if s.endedAt.Before(s.startedAt) {
		s.endedAt = s.startedAt
	}
}

func (s *Session) spent(color model.Color) time.Duration {
	d := s.budget - s.remaining[color]
	if d < 0 {
		return 0
	}
	return d
}

func (s *Session) playerFor(color model.Color) string {
	if color == model.White {
		return s.white
	}
	return s.black
}
