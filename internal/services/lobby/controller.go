package lobby

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/players"
	"github.com/mcoot/gomoku-go/internal/services/registry"
)

// Config holds lobby timing settings
type Config struct {
	BroadcastInterval time.Duration
	SweepInterval     time.Duration
}

// DefaultConfig returns the standard lobby timings
func DefaultConfig() Config {
	return Config{
		BroadcastInterval: 10 * time.Second,
		SweepInterval:     time.Second,
	}
}

// Controller is the shared context every connection actor works against:
// the player collection, the session registry and the set of live connections
type Controller struct {
	players  *players.Service
	registry *registry.Registry
	clock    clock.Clock
	random   random.Random
	cfg      Config
	logger   *slog.Logger

	connMu sync.RWMutex
	actors map[*Actor]struct{}

	// challengeMu serialises challenge links, which touch two actors at once
	challengeMu sync.Mutex
}

// NewController creates a Controller
func NewController(
	players *players.Service,
	registry *registry.Registry,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	defaults := DefaultConfig()
	if cfg.BroadcastInterval <= 0 {
		cfg.BroadcastInterval = defaults.BroadcastInterval
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	return &Controller{
		players:  players,
		registry: registry,
		clock:    clock,
		random:   random,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "lobby")),
		actors:   make(map[*Actor]struct{}),
	}
}

// Connect creates an anonymous actor for a newly accepted connection
func (c *Controller) Connect(out Outbox, remoteAddr string) *Actor {
	a := &Actor{
		ctrl:   c,
		out:    out,
		logger: c.logger.With(slog.String("remote_addr", remoteAddr)),
	}

	c.connMu.Lock()
	c.actors[a] = struct{}{}
	count := len(c.actors)
	c.connMu.Unlock()

	a.logger.Info("connection opened", slog.Int("connections", count))
	return a
}

func (c *Controller) disconnect(a *Actor) {
	c.connMu.Lock()
	delete(c.actors, a)
	count := len(c.actors)
	c.connMu.Unlock()

	a.logger.Info("connection closed", slog.Int("connections", count))
}

// Actors returns a snapshot of the live connections
func (c *Controller) Actors() []*Actor {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	out := make([]*Actor, 0, len(c.actors))
	for a := range c.actors {
		out = append(out, a)
	}
	return out
}

// Available returns the profiles of logged-in players who are ready to play
func (c *Controller) Available() []model.Profile {
	profiles := []model.Profile{}
	for _, a := range c.Actors() {
		state := a.State()
		if !state.LoggedIn || !state.Ready {
			continue
		}
		p, err := c.players.Profile(state.Username)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}
	sortProfiles(profiles)
	return profiles
}

// BroadcastLobby pushes the available set to every logged-in connection
func (c *Controller) BroadcastLobby() {
	msg := protocol.ListPlayersReply{Players: c.Available()}
	sent := 0
	for _, a := range c.Actors() {
		if a.State().LoggedIn {
			a.Send(msg)
			sent++
		}
	}
	c.logger.Debug("lobby broadcast",
		slog.Int("available", len(msg.Players)),
		slog.Int("recipients", sent),
	)
}

// sendTo routes msg to the live connection bound to username, if any
func (c *Controller) sendTo(username string, msg protocol.Message) bool {
	conn, ok := c.registry.Connection(username)
	if !ok {
		return false
	}
	conn.Send(msg)
	return true
}

// actorFor resolves the live actor bound to username
func (c *Controller) actorFor(username string) (*Actor, bool) {
	conn, ok := c.registry.Connection(username)
	if !ok {
		return nil, false
	}
	a, ok := conn.(*Actor)
	return a, ok
}

// reachable reports whether username is bound to a live, open connection
func (c *Controller) reachable(username string) bool {
	a, ok := c.actorFor(username)
	if !ok {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggedIn && !a.closed
}

// Run drives the lobby broadcaster and timeout sweeper until ctx is cancelled
func (c *Controller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.runBroadcaster(ctx)
	}()
	go func() {
		defer wg.Done()
		c.runSweeper(ctx)
	}()
	wg.Wait()
}
