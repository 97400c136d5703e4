package lobby

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

func (s *LobbySuite) TestRunBroadcastsUntilCancelled() {
	s.ctrl = NewController(s.players, s.registry, s.clock, s.random, Config{
		BroadcastInterval: 10 * time.Millisecond,
		SweepInterval:     10 * time.Millisecond,
	}, testutil.NopLogger())
	alice := s.login("alice", "alice123456")
	anon := s.connect()
	alice.out.reset()

	ctx, cancel := context.WithCancel(s.ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.ctrl.Run(ctx)
	}()

	s.Eventually(func() bool {
		return len(messagesOf[protocol.ListPlayersReply](alice.out)) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()

	s.Empty(anon.out.all(), "anonymous connections get no lobby pushes")
}

// brokenOutbox records until armed, then panics on every send
type brokenOutbox struct {
	recorder
	armed atomic.Bool
}

func (b *brokenOutbox) Send(msg protocol.Message) {
	if b.armed.Load() {
		panic("outbox closed")
	}
	b.recorder.Send(msg)
}

func (s *LobbySuite) TestSweepContinuesPastFailingConnection() {
	logger, logs := testutil.CaptureLogger()
	s.ctrl = NewController(s.players, s.registry, s.clock, s.random, DefaultConfig(), logger)
	_, err := s.players.Register(s.ctx, "dave", "dave1234567", "PRT", "1990-01-01")
	s.Require().NoError(err)

	broken := &brokenOutbox{}
	alice := s.ctrl.Connect(broken, "127.0.0.1:0")
	alice.Handle(s.ctx, protocol.LoginRequest{Username: "alice", Password: "alice123456"})
	s.Require().True(alice.State().LoggedIn)
	s.login("bob", "bob1234567")
	carol := s.login("carol", "carol123456")
	dave := s.login("dave", "dave1234567")

	s.registry.CreateSession("alice", "bob")
	healthy := s.registry.CreateSession("carol", "dave")
	broken.armed.Store(true)
	s.clock.Advance(testBudget + time.Second)

	s.Equal(1, s.ctrl.Sweep(s.ctx))

	s.True(healthy.IsFinished())
	_, registered := s.registry.GetByID(healthy.ID())
	s.False(registered)
	for _, c := range []*client{carol, dave} {
		ends := messagesOf[protocol.EndGame](c.out)
		s.Require().Len(ends, 1)
		s.Equal("dave", ends[0].Winner)
	}
	s.Equal(model.StatusTimeout, messagesOf[protocol.ErrorNotification](carol.out)[0].Code)

	s.Contains(logs.String(), "sweep failed for connection")
	s.Contains(logs.String(), "panic: outbox closed")
}
