package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/game"
)

// Conn is a live connection that messages can be routed to by username
type Conn interface {
	Send(msg protocol.Message)
}

// Registry indexes sessions by id and by participant, and connections by username.
// A session reachable by id is always reachable from both participants' sets, or from neither.
type Registry struct {
	mu       sync.RWMutex
	sessions map[model.GameID]*game.Session
	byPlayer map[string]map[model.GameID]*game.Session
	conns    map[string]Conn

	budget time.Duration
	clock  clock.Clock
	logger *slog.Logger
}

// New creates an empty Registry whose sessions start with the given turn budget
func New(budget time.Duration, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[model.GameID]*game.Session),
		byPlayer: make(map[string]map[model.GameID]*game.Session),
		conns:    make(map[string]Conn),
		budget:   budget,
		clock:    clk,
		logger:   logger.With(slog.String("component", "registry")),
	}
}

// CreateSession starts a new session with black moving first and indexes it under both players
func (r *Registry) CreateSession(black, white string) *game.Session {
	id := model.GameID(uuid.NewString())
	session := game.NewSession(id, black, white, r.budget, r.clock)

	r.mu.Lock()
	r.sessions[id] = session
	r.index(black, session)
	r.index(white, session)
	r.mu.Unlock()

	r.logger.Info("session created",
		slog.String("game_id", string(id)),
		slog.String("black", black),
		slog.String("white", white),
	)
	return session
}

// GetByID returns the session with the given id
func (r *Registry) GetByID(id model.GameID) (*game.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// GetForPlayerAndID returns the session only if username participates in it
func (r *Registry) GetForPlayerAndID(username string, id model.GameID) (*game.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPlayer[model.UsernameKey(username)][id]
	return s, ok
}

// GetAllForPlayer returns every registered session involving username
func (r *Registry) GetAllForPlayer(username string) []*game.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byPlayer[model.UsernameKey(username)]
	out := make([]*game.Session, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	return out
}

// SessionCount returns the number of registered sessions
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RegisterConnection binds username to conn.
// It returns false if a different connection already holds the username.
func (r *Registry) RegisterConnection(username string, conn Conn) bool {
	key := model.UsernameKey(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.conns[key]; ok && existing != conn {
		return false
	}
	r.conns[key] = conn
	return true
}

// UnregisterConnection removes the binding only if it still points at conn
func (r *Registry) UnregisterConnection(username string, conn Conn) {
	key := model.UsernameKey(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.conns[key]; ok && existing == conn {
		delete(r.conns, key)
	}
}

// Connection returns the live connection bound to username
func (r *Registry) Connection(username string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[model.UsernameKey(username)]
	return c, ok
}

// UnregisterSession removes the session from all indices.
// It returns false if the session was not registered.
func (r *Registry) UnregisterSession(id model.GameID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return false
	}
	r.remove(session)
	return true
}

// UnregisterAllForPlayer removes every session involving username, including the
// counterpart's references, and returns the removed sessions
func (r *Registry) UnregisterAllForPlayer(username string) []*game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byPlayer[model.UsernameKey(username)]
	removed := make([]*game.Session, 0, len(set))
	for _, s := range set {
		removed = append(removed, s)
	}
	for _, s := range removed {
		r.remove(s)
	}
	return removed
}

func (r *Registry) index(username string, s *game.Session) {
	key := model.UsernameKey(username)
	set, ok := r.byPlayer[key]
	if !ok {
		set = make(map[model.GameID]*game.Session)
		r.byPlayer[key] = set
	}
	set[s.ID()] = s
}

func (r *Registry) remove(s *game.Session) {
	delete(r.sessions, s.ID())
	for _, username := range [2]string{s.Black(), s.White()} {
		key := model.UsernameKey(username)
		set := r.byPlayer[key]
		delete(set, s.ID())
		if len(set) == 0 {
			delete(r.byPlayer, key)
		}
	}
}
