package lobby

import (
	"sync"

	"github.com/mcoot/gomoku-go/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

func (s *LobbySuite) TestChallengeAcceptedStartsGame() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)
	s.ready(bob)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})

	invites := messagesOf[protocol.ChallengeInvitation](alice.out)
	s.Require().Len(invites, 1)
	s.Equal("bob", invites[0].Challenger.Username)
	s.True(alice.actor.State().InChallenge)
	s.True(bob.actor.State().Challenger)
	s.Equal("alice", bob.actor.State().Counterpart)

	s.random.QueueCoinFlip(true)
	alice.actor.Handle(s.ctx, protocol.ChallengeReply{Status: model.StatusAccepted})

	aliceStart := messagesOf[protocol.GameStarted](alice.out)
	bobStart := messagesOf[protocol.GameStarted](bob.out)
	s.Require().Len(aliceStart, 1)
	s.Require().Len(bobStart, 1)
	s.NotEmpty(aliceStart[0].GameID)
	s.Equal(aliceStart[0], bobStart[0])
	s.Equal("alice", aliceStart[0].Black.Username, "heads gives the challenged side black")
	s.Equal("bob", aliceStart[0].White.Username)

	replies := messagesOf[protocol.ChallengeReply](bob.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusAccepted, replies[0].Status)

	for _, c := range []*client{alice, bob} {
		state := c.actor.State()
		s.False(state.InChallenge)
		s.False(state.Ready)
	}
	s.Empty(s.ctrl.Available())

	_, ok := s.registry.GetForPlayerAndID("alice", aliceStart[0].GameID)
	s.True(ok)
	_, ok = s.registry.GetForPlayerAndID("bob", aliceStart[0].GameID)
	s.True(ok)
}

func (s *LobbySuite) TestScenarioFirstMoveByBlack() {
	black, white, id := s.startMatch()

	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})

	replies := messagesOf[protocol.MoveReply](black.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusAccepted, replies[0].Status)
	s.Equal(id, replies[0].GameID)

	states := messagesOf[protocol.GameState](white.out)
	s.Require().Len(states, 1)
	s.Equal(byte('B'), states[0].Board[7][7])
	s.Equal("White", states[0].NextPlayerColor)
	s.Equal(id, states[0].GameID)
}

func (s *LobbySuite) TestChallengeRejections() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	s.Equal(model.StatusRejected, messagesOf[protocol.ChallengeReply](anon.out)[0].Status)

	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")

	tests := []struct {
		name     string
		opponent string
		want     model.Status
	}{
		{"self", "ALICE", model.StatusRejected},
		{"unknown player", "zed", model.StatusUsernameUnknown},
		{"opponent offline", "carol", model.StatusRejected},
		{"opponent not ready", "bob", model.StatusRejected},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			alice.out.reset()
			alice.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: tt.opponent})
			replies := messagesOf[protocol.ChallengeReply](alice.out)
			s.Require().Len(replies, 1)
			s.Equal(tt.want, replies[0].Status)
			s.False(alice.actor.State().InChallenge)
		})
	}
	s.Empty(messagesOf[protocol.ChallengeInvitation](bob.out))
}

func (s *LobbySuite) TestChallengeWhileChallengedIsRejected() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	carol := s.login("carol", "carol123456")
	s.ready(alice)
	s.ready(carol)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	s.Require().True(alice.actor.State().InChallenge)

	// alice is already challenged
	carol.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	s.Equal(model.StatusRejected, messagesOf[protocol.ChallengeReply](carol.out)[0].Status)

	// bob already has a challenge out
	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "carol"})
	s.Equal(model.StatusRejected, messagesOf[protocol.ChallengeReply](bob.out)[0].Status)
	s.Empty(messagesOf[protocol.ChallengeInvitation](carol.out))
}

func (s *LobbySuite) TestChallengeRejectedInformsChallenger() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	alice.actor.Handle(s.ctx, protocol.ChallengeReply{Status: model.StatusRejected})

	replies := messagesOf[protocol.ChallengeReply](bob.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusRejected, replies[0].Status)
	s.False(alice.actor.State().InChallenge)
	s.False(bob.actor.State().InChallenge)
	s.True(alice.actor.State().Ready, "a declined challenge keeps the ready flag")
	s.Equal(0, s.registry.SessionCount())
}

func (s *LobbySuite) TestChallengerCanCancel() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	bob.actor.Handle(s.ctx, protocol.ChallengeReply{Status: model.StatusCanceled})

	replies := messagesOf[protocol.ChallengeReply](alice.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusCanceled, replies[0].Status)
	s.False(alice.actor.State().InChallenge)
	s.False(bob.actor.State().InChallenge)
}

func (s *LobbySuite) TestChallengerCannotAccept() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	bob.actor.Handle(s.ctx, protocol.ChallengeReply{Status: model.StatusAccepted})

	s.Equal(model.StatusRejected, messagesOf[protocol.ChallengeReply](bob.out)[0].Status)
	s.True(alice.actor.State().InChallenge)
	s.Equal(0, s.registry.SessionCount())
}

func (s *LobbySuite) TestChallengeReplyWithoutChallengeIsRejected() {
	alice := s.login("alice", "alice123456")
	alice.actor.Handle(s.ctx, protocol.ChallengeReply{Status: model.StatusAccepted})

	replies := messagesOf[protocol.ChallengeReply](alice.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusRejected, replies[0].Status)
	s.Equal(0, s.registry.SessionCount())
}

func (s *LobbySuite) TestLogoutCancelsPendingChallenge() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	alice.actor.Handle(s.ctx, protocol.LogoutRequest{})

	replies := messagesOf[protocol.ChallengeReply](bob.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusCanceled, replies[0].Status)
	s.False(bob.actor.State().InChallenge)
}

func (s *LobbySuite) TestDisconnectCancelsPendingChallenge() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)

	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})
	bob.actor.Teardown(s.ctx)

	replies := messagesOf[protocol.ChallengeReply](alice.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusCanceled, replies[0].Status)
	s.False(alice.actor.State().InChallenge)
	s.True(alice.actor.State().Ready)
}

// flipHookRandom runs onFlip before every coin flip
type flipHookRandom struct {
	*mocks.MockRandom
	onFlip func()
}

func (r *flipHookRandom) CoinFlip() bool {
	if r.onFlip != nil {
		r.onFlip()
	}
	return r.MockRandom.CoinFlip()
}

func (s *LobbySuite) TestChallengerDisconnectWhileAcceptingLeavesNoSession() {
	rnd := &flipHookRandom{MockRandom: mocks.NewMockRandom()}
	s.ctrl = NewController(s.players, s.registry, s.clock, rnd, DefaultConfig(), testutil.NopLogger())

	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	s.ready(alice)
	s.ready(bob)
	bob.actor.Handle(s.ctx, protocol.ChallengeRequest{Opponent: "alice"})

	var wg sync.WaitGroup
	rnd.onFlip = func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bob.actor.Teardown(s.ctx)
		}()
	}
	alice.actor.Handle(s.ctx, protocol.ChallengeReply{Status: model.StatusAccepted})
	wg.Wait()

	s.Zero(s.registry.SessionCount())
	s.Empty(s.registry.GetAllForPlayer("alice"))
	s.Empty(s.registry.GetAllForPlayer("bob"))

	// either the game never started, or bob's teardown settled it in alice's favour
	if started := messagesOf[protocol.GameStarted](alice.out); len(started) > 0 {
		ends := messagesOf[protocol.EndGame](alice.out)
		s.Require().Len(ends, 1)
		s.Equal("alice", ends[0].Winner)
		s.Len(messagesOf[protocol.OpponentDisconnected](alice.out), 1)
	} else {
		replies := messagesOf[protocol.ChallengeReply](alice.out)
		s.Require().NotEmpty(replies)
		s.Equal(model.StatusRejected, replies[len(replies)-1].Status)
	}

	s.clock.Advance(3 * testBudget)
	s.Zero(s.ctrl.Sweep(s.ctx))
	s.Zero(s.registry.SessionCount())
}
