package lobby

import (
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
)

func (s *LobbySuite) lastMoveReply(c *client) protocol.MoveReply {
	replies := messagesOf[protocol.MoveReply](c.out)
	s.Require().NotEmpty(replies)
	return replies[len(replies)-1]
}

func (s *LobbySuite) TestMoveRejections() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.MoveRequest{GameID: "g", Row: 0, Col: 0})
	s.Equal(model.StatusRejected, s.lastMoveReply(anon).Status)

	black, white, id := s.startMatch()
	carol := s.login("carol", "carol123456")

	white.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 0, Col: 0})
	s.Equal(model.StatusNotYourTurn, s.lastMoveReply(white).Status)

	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 15, Col: 0})
	s.Equal(model.StatusInvalidMove, s.lastMoveReply(black).Status)

	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: "missing", Row: 0, Col: 0})
	s.Equal(model.StatusGameNotFound, s.lastMoveReply(black).Status)

	carol.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 0, Col: 0})
	s.Equal(model.StatusGameNotFound, s.lastMoveReply(carol).Status, "sessions are scoped to their players")

	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})
	white.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})
	s.Equal(model.StatusInvalidMove, s.lastMoveReply(white).Status)
}

func (s *LobbySuite) TestWinningMoveSettlesGame() {
	black, white, id := s.startMatch()

	for i := 0; i < 4; i++ {
		black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 3 + i})
		white.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 0, Col: i})
	}
	s.clock.Advance(30 * time.Second)
	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})

	s.Equal(model.StatusAccepted, s.lastMoveReply(black).Status)

	for _, c := range []*client{black, white} {
		ends := messagesOf[protocol.EndGame](c.out)
		s.Require().Len(ends, 1)
		s.Equal("bob", ends[0].Winner)
		s.Equal(id, ends[0].GameID)
		s.Equal(int64(30000), ends[0].TotalDurationMs)
	}

	// the loser sees the final board before the end of the game
	s.Less(white.out.indexOf(protocol.TypeGameState), white.out.indexOf(protocol.TypeEndGame))

	bob, _ := s.players.Profile("bob")
	alice, _ := s.players.Profile("alice")
	s.Equal(1, bob.Victories)
	s.Equal(int64(30000), bob.TimeSpentMs)
	s.Equal(1, alice.Defeats)
	s.Equal(int64(0), alice.TimeSpentMs)

	_, ok := s.registry.GetByID(id)
	s.False(ok)
}

func (s *LobbySuite) TestScenarioForfeit() {
	black, white, id := s.startMatch()
	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})

	white.actor.Handle(s.ctx, protocol.ForfeitMatchRequest{GameID: id})

	bob, _ := s.players.Profile("bob")
	alice, _ := s.players.Profile("alice")
	s.Equal(1, bob.Victories)
	s.Equal(0, bob.Defeats)
	s.Equal(1, alice.Defeats)
	s.Equal(0, alice.Victories)

	_, ok := s.registry.GetForPlayerAndID("alice", id)
	s.False(ok)
	_, ok = s.registry.GetForPlayerAndID("bob", id)
	s.False(ok)

	for _, c := range []*client{black, white} {
		s.Len(messagesOf[protocol.ProfileUpdateNotification](c.out), 1)
		ends := messagesOf[protocol.EndGame](c.out)
		s.Require().Len(ends, 1)
		s.Equal("bob", ends[0].Winner)
	}

	// a second forfeit finds nothing
	white.actor.Handle(s.ctx, protocol.ForfeitMatchRequest{GameID: id})
	errs := messagesOf[protocol.ErrorNotification](white.out)
	s.Require().Len(errs, 1)
	s.Equal(model.StatusGameNotFound, errs[0].Code)

	bob, _ = s.players.Profile("bob")
	s.Equal(1, bob.Victories)
}

func (s *LobbySuite) TestForfeitRequiresLogin() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.ForfeitMatchRequest{GameID: "g"})
	errs := messagesOf[protocol.ErrorNotification](anon.out)
	s.Require().Len(errs, 1)
	s.Equal(model.StatusRejected, errs[0].Code)
}

func (s *LobbySuite) TestMoveAfterClockExpiryTimesOut() {
	black, white, id := s.startMatch()
	s.clock.Advance(testBudget + time.Second)

	white.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 0, Col: 0})
	s.Equal(model.StatusTimeout, s.lastMoveReply(white).Status)

	errs := messagesOf[protocol.ErrorNotification](black.out)
	s.Require().Len(errs, 1)
	s.Equal(model.StatusTimeout, errs[0].Code)
	s.Less(black.out.indexOf(protocol.TypeErrorNotification), black.out.indexOf(protocol.TypeEndGame))

	ends := messagesOf[protocol.EndGame](white.out)
	s.Require().Len(ends, 1)
	s.Equal("alice", ends[0].Winner)

	bob, _ := s.players.Profile("bob")
	s.Equal(1, bob.Defeats)
	s.Equal(testBudget.Milliseconds(), bob.TimeSpentMs)
	s.Equal(0, s.registry.SessionCount())
}

func (s *LobbySuite) TestSweepTimesOutExpiredTurns() {
	black, white, id := s.startMatch()
	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})

	s.clock.Advance(testBudget - time.Second)
	s.Equal(0, s.ctrl.Sweep(s.ctx))
	s.Equal(1, s.registry.SessionCount())

	s.clock.Advance(time.Second)
	s.Equal(1, s.ctrl.Sweep(s.ctx))
	s.Equal(0, s.ctrl.Sweep(s.ctx))

	errs := messagesOf[protocol.ErrorNotification](white.out)
	s.Require().Len(errs, 1)
	s.Equal(model.StatusTimeout, errs[0].Code)
	s.Empty(messagesOf[protocol.ErrorNotification](black.out))

	ends := messagesOf[protocol.EndGame](black.out)
	s.Require().Len(ends, 1)
	s.Equal("bob", ends[0].Winner)

	alice, _ := s.players.Profile("alice")
	s.Equal(1, alice.Defeats)
	s.Equal(0, s.registry.SessionCount())
}

func (s *LobbySuite) TestSweepSkipsAnonymousAndIdleConnections() {
	s.connect()
	s.login("carol", "carol123456")
	s.clock.Advance(time.Hour)
	s.Equal(0, s.ctrl.Sweep(s.ctx))
}

func (s *LobbySuite) TestDisconnectMidGameForfeitsAndNotifiesOpponent() {
	black, white, id := s.startMatch()
	black.actor.Handle(s.ctx, protocol.MoveRequest{GameID: id, Row: 7, Col: 7})

	white.actor.Teardown(s.ctx)

	dcs := messagesOf[protocol.OpponentDisconnected](black.out)
	s.Require().Len(dcs, 1)
	s.Equal(id, dcs[0].GameID)
	s.Less(black.out.indexOf(protocol.TypeOpponentDisconnected), black.out.indexOf(protocol.TypeEndGame))

	bob, _ := s.players.Profile("bob")
	s.Equal(1, bob.Victories)
	alice, _ := s.players.Profile("alice")
	s.Equal(1, alice.Defeats)

	s.Equal(0, s.registry.SessionCount())
	_, ok := s.registry.Connection("alice")
	s.False(ok)
	s.Len(s.ctrl.Actors(), 1)

	// a repeated teardown is a no-op
	white.actor.Teardown(s.ctx)
	alice, _ = s.players.Profile("alice")
	s.Equal(1, alice.Defeats)
}

func (s *LobbySuite) TestLogoutMidGameForfeits() {
	black, white, id := s.startMatch()

	black.actor.Handle(s.ctx, protocol.LogoutRequest{})

	s.Empty(messagesOf[protocol.OpponentDisconnected](white.out))
	ends := messagesOf[protocol.EndGame](white.out)
	s.Require().Len(ends, 1)
	s.Equal("alice", ends[0].Winner)
	s.Equal(id, ends[0].GameID)

	replies := messagesOf[protocol.LogoutReply](black.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusAccepted, replies[0].Status)
}

func (s *LobbySuite) TestAvailableListsOnlyReadyPlayers() {
	alice := s.login("alice", "alice123456")
	s.login("bob", "bob1234567")
	carol := s.login("carol", "carol123456")
	s.ready(carol)
	s.ready(alice)

	available := s.ctrl.Available()
	s.Require().Len(available, 2)
	s.Equal("alice", available[0].Username)
	s.Equal("carol", available[1].Username)
}

func (s *LobbySuite) TestLogoutPrunesFinishedButUnsettledSessions() {
	alice := s.login("alice", "alice123456")
	stale := s.registry.CreateSession("alice", "bob")
	s.Require().True(stale.Forfeit("bob"))

	alice.actor.Handle(s.ctx, protocol.LogoutRequest{})

	_, ok := s.registry.GetByID(stale.ID())
	s.False(ok)
	s.Empty(s.registry.GetAllForPlayer("alice"))
	s.Empty(s.registry.GetAllForPlayer("bob"))
	s.Empty(messagesOf[protocol.EndGame](alice.out), "pruning does not settle")
}
