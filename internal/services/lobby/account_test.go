package lobby

import (
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/players"
)

func (s *LobbySuite) TestLoginSucceedsCaseInsensitively() {
	c := s.connect()
	c.actor.Handle(s.ctx, protocol.LoginRequest{Username: "ALICE", Password: "alice123456"})

	replies := messagesOf[protocol.LoginReply](c.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusAccepted, replies[0].Status)
	s.Require().NotNil(replies[0].Profile)
	s.Equal("alice", replies[0].Profile.Username)

	s.True(c.actor.State().LoggedIn)
	s.Equal("alice", c.actor.State().Username)
	s.NotEmpty(messagesOf[protocol.ListPlayersReply](c.out), "lobby snapshot pushed on login")

	conn, ok := s.registry.Connection("alice")
	s.True(ok)
	s.Same(c.actor, conn)
}

func (s *LobbySuite) TestLoginFailures() {
	c := s.connect()
	c.actor.Handle(s.ctx, protocol.LoginRequest{Username: "nobody", Password: "whatever1"})
	c.actor.Handle(s.ctx, protocol.LoginRequest{Username: "alice", Password: "wrong-pass"})

	replies := messagesOf[protocol.LoginReply](c.out)
	s.Require().Len(replies, 2)
	s.Equal(model.StatusUsernameUnknown, replies[0].Status)
	s.Nil(replies[0].Profile)
	s.Equal(model.StatusWrongPassword, replies[1].Status)
	s.False(c.actor.State().LoggedIn)
}

func (s *LobbySuite) TestSecondLoginIsRejected() {
	first := s.login("alice", "alice123456")

	first.actor.Handle(s.ctx, protocol.LoginRequest{Username: "bob", Password: "bob1234567"})
	replies := messagesOf[protocol.LoginReply](first.out)
	s.Equal(model.StatusRejected, replies[len(replies)-1].Status)

	other := s.connect()
	other.actor.Handle(s.ctx, protocol.LoginRequest{Username: "alice", Password: "alice123456"})
	replies = messagesOf[protocol.LoginReply](other.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusRejected, replies[0].Status)
	s.False(other.actor.State().LoggedIn)
}

func (s *LobbySuite) TestRegisterScenario() {
	c := s.connect()
	c.actor.Handle(s.ctx, protocol.RegisterRequest{Username: "eve", Password: "short", Nationality: "PRT", DateOfBirth: "1990-01-01"})
	c.actor.Handle(s.ctx, protocol.RegisterRequest{Username: "eve", Password: "longenough1", Nationality: "PRT", DateOfBirth: "1990-01-01"})

	other := s.connect()
	other.actor.Handle(s.ctx, protocol.RegisterRequest{Username: "EVE", Password: "longenough1", Nationality: "PRT", DateOfBirth: "1990-01-01"})

	replies := messagesOf[protocol.RegisterReply](c.out)
	s.Require().Len(replies, 2)
	s.Equal(model.StatusPasswordInvalid, replies[0].Status)
	s.Equal(model.StatusAccepted, replies[1].Status)
	s.True(c.actor.State().LoggedIn, "registration logs the player in")
	s.Equal("eve", c.actor.State().Username)

	otherReplies := messagesOf[protocol.RegisterReply](other.out)
	s.Require().Len(otherReplies, 1)
	s.Equal(model.StatusUsernameDuplicated, otherReplies[0].Status)

	s.Equal(1, len(messagesOf[protocol.ProfileUpdateNotification](c.out)))
}

func (s *LobbySuite) TestRegisterWhileLoggedInIsRejected() {
	c := s.login("alice", "alice123456")
	c.actor.Handle(s.ctx, protocol.RegisterRequest{Username: "frank", Password: "longenough1", Nationality: "PRT", DateOfBirth: "1990-01-01"})
	replies := messagesOf[protocol.RegisterReply](c.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusRejected, replies[0].Status)
	s.False(s.players.Exists("frank"))
}

func (s *LobbySuite) TestLogout() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.LogoutRequest{})
	s.Equal(model.StatusRejected, messagesOf[protocol.LogoutReply](anon.out)[0].Status)

	c := s.login("alice", "alice123456")
	s.ready(c)
	c.actor.Handle(s.ctx, protocol.LogoutRequest{})

	replies := messagesOf[protocol.LogoutReply](c.out)
	s.Require().Len(replies, 1)
	s.Equal(model.StatusAccepted, replies[0].Status)

	state := c.actor.State()
	s.False(state.LoggedIn)
	s.False(state.Ready)
	_, ok := s.registry.Connection("alice")
	s.False(ok)
	s.Len(s.ctrl.Actors(), 2, "logout keeps the connection open")

	// the same connection can log in again
	c.actor.Handle(s.ctx, protocol.LoginRequest{Username: "alice", Password: "alice123456"})
	logins := messagesOf[protocol.LoginReply](c.out)
	s.Equal(model.StatusAccepted, logins[len(logins)-1].Status)
}

func (s *LobbySuite) TestReady() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.ReadyRequest{Ready: true})
	s.Equal(model.StatusRejected, messagesOf[protocol.ReadyReply](anon.out)[0].Status)
	s.False(anon.actor.State().Ready)

	c := s.login("alice", "alice123456")
	c.actor.Handle(s.ctx, protocol.ReadyRequest{Ready: true})
	s.True(c.actor.State().Ready)
	c.actor.Handle(s.ctx, protocol.ReadyRequest{Ready: false})
	s.False(c.actor.State().Ready)

	for _, r := range messagesOf[protocol.ReadyReply](c.out) {
		s.Equal(model.StatusAccepted, r.Status)
	}
}

func (s *LobbySuite) TestReadyBroadcastsAvailablePlayers() {
	alice := s.login("alice", "alice123456")
	bob := s.login("bob", "bob1234567")
	anon := s.connect()
	alice.out.reset()
	bob.out.reset()

	s.ready(alice)

	for _, c := range []*client{alice, bob} {
		lists := messagesOf[protocol.ListPlayersReply](c.out)
		s.Require().Len(lists, 1)
		s.Require().Len(lists[0].Players, 1)
		s.Equal("alice", lists[0].Players[0].Username)
	}
	s.Empty(anon.out.all(), "anonymous connections get no lobby pushes")
}

func (s *LobbySuite) TestListPlayersAndLeaderboardRequireLogin() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.ListPlayersRequest{})
	anon.actor.Handle(s.ctx, protocol.LeaderboardRequest{})

	errs := messagesOf[protocol.ErrorNotification](anon.out)
	s.Require().Len(errs, 2)
	s.Equal(model.StatusRejected, errs[0].Code)
	s.Equal(model.StatusRejected, errs[1].Code)
}

func (s *LobbySuite) TestLeaderboardListsAllPlayers() {
	c := s.login("carol", "carol123456")
	_, err := s.players.RecordResult(s.ctx, "bob", "alice", 0, 0)
	s.Require().NoError(err)

	c.actor.Handle(s.ctx, protocol.LeaderboardRequest{})
	boards := messagesOf[protocol.LeaderboardReply](c.out)
	s.Require().Len(boards, 1)
	s.Require().Len(boards[0].Players, 3)
	s.Equal("bob", boards[0].Players[0].Username)
	s.Equal("carol", boards[0].Players[1].Username)
	s.Equal("alice", boards[0].Players[2].Username)
}

func (s *LobbySuite) TestUpdateProfile() {
	anon := s.connect()
	anon.actor.Handle(s.ctx, protocol.UpdateProfileRequest{})
	s.Equal(model.StatusRejected, messagesOf[protocol.UpdateProfileReply](anon.out)[0].Status)

	c := s.login("alice", "alice123456")
	theme := "dark"
	bad := "xx"
	c.actor.Handle(s.ctx, protocol.UpdateProfileRequest{Theme: &theme})
	c.actor.Handle(s.ctx, protocol.UpdateProfileRequest{Nationality: &bad})

	replies := messagesOf[protocol.UpdateProfileReply](c.out)
	s.Require().Len(replies, 2)
	s.Equal(model.StatusAccepted, replies[0].Status)
	s.Equal(model.StatusNationalityInvalid, replies[1].Status)

	notes := messagesOf[protocol.ProfileUpdateNotification](c.out)
	s.Require().Len(notes, 1)
	s.Equal("dark", notes[0].Profile.Theme)
	s.Equal("PRT", notes[0].Profile.Nationality)
}

func (s *LobbySuite) TestUpdatePhoto() {
	c := s.login("alice", "alice123456")
	c.actor.Handle(s.ctx, protocol.UpdatePhotoRequest{Photo: []byte{1, 2, 3}})
	c.actor.Handle(s.ctx, protocol.UpdatePhotoRequest{Photo: make([]byte, players.DefaultConfig().MaxPhotoBytes+1)})

	replies := messagesOf[protocol.UpdatePhotoReply](c.out)
	s.Require().Len(replies, 2)
	s.Equal(model.StatusAccepted, replies[0].Status)
	s.Equal(model.StatusRejected, replies[1].Status)

	profile, err := s.players.Profile("alice")
	s.Require().NoError(err)
	s.Equal([]byte{1, 2, 3}, profile.Photo)
}
