package lobby

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/registry"
)

// Outbox delivers messages to one client; it must not block
type Outbox interface {
	Send(msg protocol.Message)
}

// State is a point-in-time copy of an actor's flags
type State struct {
	Username    string
	LoggedIn    bool
	Ready       bool
	InChallenge bool
	Challenger  bool   // true when this side issued the pending challenge
	Counterpart string // the other side of the pending challenge
}

// Actor is the protocol state machine for one connection.
// Handle is called sequentially by the connection worker; other actors only
// touch the challenge fields, under the controller's challenge lock.
type Actor struct {
	ctrl   *Controller
	out    Outbox
	logger *slog.Logger

	mu          sync.Mutex
	username    string
	loggedIn    bool
	ready       bool
	inChallenge bool
	challenger  bool
	counterpart string
	closed      bool
}

var _ registry.Conn = (*Actor)(nil)

// Send forwards msg to the connection's outbox
func (a *Actor) Send(msg protocol.Message) {
	a.out.Send(msg)
}

// State returns a copy of the actor's flags
func (a *Actor) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		Username:    a.username,
		LoggedIn:    a.loggedIn,
		Ready:       a.ready,
		InChallenge: a.inChallenge,
		Challenger:  a.challenger,
		Counterpart: a.counterpart,
	}
}

// Handle dispatches one decoded request
func (a *Actor) Handle(ctx context.Context, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.LoginRequest:
		a.handleLogin(m)
	case protocol.LogoutRequest:
		a.handleLogout(ctx)
	case protocol.RegisterRequest:
		a.handleRegister(ctx, m)
	case protocol.UpdateProfileRequest:
		a.handleUpdateProfile(ctx, m)
	case protocol.UpdatePhotoRequest:
		a.handleUpdatePhoto(ctx, m)
	case protocol.LeaderboardRequest:
		a.handleLeaderboard()
	case protocol.ListPlayersRequest:
		a.handleListPlayers()
	case protocol.ReadyRequest:
		a.handleReady(m)
	case protocol.ChallengeRequest:
		a.handleChallenge(m)
	case protocol.ChallengeReply:
		a.handleChallengeReply(m)
	case protocol.MoveRequest:
		a.handleMove(ctx, m)
	case protocol.ForfeitMatchRequest:
		a.handleForfeit(ctx, m)
	default:
		a.logger.Warn("unhandled message", slog.String("type", string(msg.MessageType())))
	}
}

// Teardown runs the disconnect cleanup; it is safe to call more than once
func (a *Actor) Teardown(ctx context.Context) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.leave(ctx, true)
	a.ctrl.disconnect(a)
	a.ctrl.BroadcastLobby()
}

func (a *Actor) identity() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.username, a.loggedIn
}

// leave cancels the pending challenge, ends every unfinished session and
// returns the actor to anonymous. On disconnect each opponent is told before settlement.
func (a *Actor) leave(ctx context.Context, disconnected bool) {
	username, loggedIn := a.identity()
	if !loggedIn {
		return
	}

	a.cancelChallenge()

	for _, session := range a.ctrl.registry.GetAllForPlayer(username) {
		if disconnected {
			if !session.Abandon(username) {
				continue
			}
			a.ctrl.sendTo(session.Opponent(username), protocol.OpponentDisconnected{
				GameID:      session.ID(),
				Description: username + " disconnected",
			})
		} else if !session.Forfeit(username) {
			continue
		}
		a.ctrl.settle(ctx, session)
	}

	a.mu.Lock()
	a.username = ""
	a.loggedIn = false
	a.ready = false
	a.mu.Unlock()

	if stale := a.ctrl.registry.UnregisterAllForPlayer(username); len(stale) > 0 {
		a.logger.Warn("pruned unsettled sessions", slog.String("username", username), slog.Int("count", len(stale)))
	}
	a.ctrl.registry.UnregisterConnection(username, a)
	a.logger.Info("player left", slog.String("username", username), slog.Bool("disconnected", disconnected))
}
