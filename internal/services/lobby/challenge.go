package lobby

import (
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
)

func (a *Actor) handleChallenge(req protocol.ChallengeRequest) {
	if err := a.issueChallenge(req.Opponent); err != nil {
		a.Send(protocol.ChallengeReply{Status: model.StatusFor(err)})
	}
}

// issueChallenge links a and the opponent and sends the invitation
func (a *Actor) issueChallenge(opponent string) error {
	c := a.ctrl
	c.challengeMu.Lock()
	defer c.challengeMu.Unlock()

	self := a.State()
	if !self.LoggedIn {
		return model.ErrNotLoggedIn
	}
	if self.InChallenge {
		return model.ErrChallengeInvalid
	}
	if model.UsernameKey(opponent) == model.UsernameKey(self.Username) {
		return model.ErrChallengeInvalid
	}
	if !c.players.Exists(opponent) {
		return model.ErrPlayerNotFound
	}

	peer, ok := c.actorFor(opponent)
	if !ok {
		return model.ErrChallengeInvalid
	}
	other := peer.State()
	if !other.LoggedIn || !other.Ready || other.InChallenge {
		return model.ErrChallengeInvalid
	}

	profile, err := c.players.Profile(self.Username)
	if err != nil {
		return err
	}

	a.linkChallenge(other.Username, true)
	peer.linkChallenge(self.Username, false)
	peer.Send(protocol.ChallengeInvitation{Challenger: profile})

	a.logger.Info("challenge issued",
		slog.String("challenger", self.Username),
		slog.String("challenged", other.Username),
	)
	return nil
}

func (a *Actor) handleChallengeReply(req protocol.ChallengeReply) {
	c := a.ctrl
	c.challengeMu.Lock()

	self := a.State()
	peer, ok := a.challengePeer(self)
	if !ok {
		if self.InChallenge {
			a.clearChallenge(false)
		}
		c.challengeMu.Unlock()
		a.Send(protocol.ChallengeReply{Status: model.StatusFor(model.ErrChallengeInvalid)})
		return
	}

	if req.Status == model.StatusAccepted {
		if self.Challenger {
			// only the challenged side can accept
			c.challengeMu.Unlock()
			a.Send(protocol.ChallengeReply{Status: model.StatusFor(model.ErrChallengeInvalid)})
			return
		}
		a.clearChallenge(true)
		peer.clearChallenge(true)
		c.startGameLocked(self.Counterpart, self.Username)
		c.challengeMu.Unlock()

		c.BroadcastLobby()
		return
	}

	a.clearChallenge(false)
	peer.clearChallenge(false)
	c.challengeMu.Unlock()

	peer.Send(protocol.ChallengeReply{Status: req.Status})
	a.logger.Info("challenge closed",
		slog.String("by", self.Username),
		slog.String("counterpart", self.Counterpart),
		slog.String("status", string(req.Status)),
	)
	c.BroadcastLobby()
}

// cancelChallenge drops a pending challenge and tells the other side
func (a *Actor) cancelChallenge() {
	c := a.ctrl
	c.challengeMu.Lock()
	self := a.State()
	if !self.InChallenge {
		c.challengeMu.Unlock()
		return
	}
	peer, ok := a.challengePeer(self)
	a.clearChallenge(false)
	if ok {
		peer.clearChallenge(false)
	}
	c.challengeMu.Unlock()

	if ok {
		peer.Send(protocol.ChallengeReply{Status: model.StatusCanceled})
	}
}

// challengePeer resolves the counterpart actor, requiring the link to be mutual.
// Callers hold challengeMu.
func (a *Actor) challengePeer(self State) (*Actor, bool) {
	if !self.LoggedIn || !self.InChallenge {
		return nil, false
	}
	peer, ok := a.ctrl.actorFor(self.Counterpart)
	if !ok {
		return nil, false
	}
	other := peer.State()
	if !other.InChallenge || model.UsernameKey(other.Counterpart) != model.UsernameKey(self.Username) {
		return nil, false
	}
	return peer, true
}

func (a *Actor) linkChallenge(counterpart string, challenger bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inChallenge = true
	a.challenger = challenger
	a.counterpart = counterpart
}

func (a *Actor) clearChallenge(clearReady bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inChallenge = false
	a.challenger = false
	a.counterpart = ""
	if clearReady {
		a.ready = false
	}
}

// startGameLocked assigns colours by coin flip, registers the session and
// notifies both players. Callers hold challengeMu, so a teardown that starts
// meanwhile waits in cancelChallenge and then finds the session to settle.
func (c *Controller) startGameLocked(challenger, challenged string) {
	black, white := challenger, challenged
	if c.random.CoinFlip() {
		black, white = challenged, challenger
	}

	for _, username := range [2]string{challenger, challenged} {
		if !c.reachable(username) {
			c.logger.Info("game not started, player left",
				slog.String("username", username),
				slog.String("challenger", challenger),
				slog.String("challenged", challenged),
			)
			c.sendTo(challenger, protocol.ChallengeReply{Status: model.StatusFor(model.ErrChallengeInvalid)})
			c.sendTo(challenged, protocol.ChallengeReply{Status: model.StatusFor(model.ErrChallengeInvalid)})
			return
		}
	}

	blackProfile, err := c.players.Profile(black)
	if err != nil {
		c.logger.Warn("cannot start game", slog.String("username", black), slog.String("error", err.Error()))
		return
	}
	whiteProfile, err := c.players.Profile(white)
	if err != nil {
		c.logger.Warn("cannot start game", slog.String("username", white), slog.String("error", err.Error()))
		return
	}

	session := c.registry.CreateSession(black, white)
	started := protocol.GameStarted{
		GameID: session.ID(),
		Black:  blackProfile,
		White:  whiteProfile,
	}

	c.sendTo(challenger, protocol.ChallengeReply{Status: model.StatusAccepted})
	c.sendTo(black, started)
	c.sendTo(white, started)
}
