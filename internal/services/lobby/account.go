package lobby

import (
	"context"
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
)

const loginRequired = "login required"

// requireLogin returns the bound username, or ErrNotLoggedIn
func (a *Actor) requireLogin() (string, error) {
	username, loggedIn := a.identity()
	if !loggedIn {
		return "", model.ErrNotLoggedIn
	}
	return username, nil
}

// requireAnonymous returns ErrAlreadyLoggedIn once a username is bound
func (a *Actor) requireAnonymous() error {
	if _, loggedIn := a.identity(); loggedIn {
		return model.ErrAlreadyLoggedIn
	}
	return nil
}

func (a *Actor) handleLogin(req protocol.LoginRequest) {
	if err := a.requireAnonymous(); err != nil {
		a.Send(protocol.LoginReply{Status: model.StatusFor(err)})
		return
	}

	profile, err := a.ctrl.players.Authenticate(req.Username, req.Password)
	if err != nil {
		a.logger.Info("login refused", slog.String("username", req.Username), slog.String("error", err.Error()))
		a.Send(protocol.LoginReply{Status: model.StatusFor(err)})
		return
	}

	if err := a.bind(profile.Username); err != nil {
		a.logger.Info("login refused", slog.String("username", profile.Username), slog.String("error", err.Error()))
		a.Send(protocol.LoginReply{Status: model.StatusFor(err)})
		return
	}

	a.logger.Info("player logged in", slog.String("username", profile.Username))
	a.Send(protocol.LoginReply{Status: model.StatusAccepted, Profile: &profile})
	a.ctrl.BroadcastLobby()
}

func (a *Actor) handleRegister(ctx context.Context, req protocol.RegisterRequest) {
	if err := a.requireAnonymous(); err != nil {
		a.Send(protocol.RegisterReply{Status: model.StatusFor(err)})
		return
	}

	profile, err := a.ctrl.players.Register(ctx, req.Username, req.Password, req.Nationality, req.DateOfBirth)
	if err != nil {
		a.Send(protocol.RegisterReply{Status: model.StatusFor(err)})
		return
	}

	if err := a.bind(profile.Username); err != nil {
		// the account exists; the client can log in once the other connection leaves
		a.Send(protocol.RegisterReply{Status: model.StatusAccepted})
		return
	}

	a.logger.Info("player registered and logged in", slog.String("username", profile.Username))
	a.Send(protocol.RegisterReply{Status: model.StatusAccepted})
	a.Send(protocol.ProfileUpdateNotification{Profile: profile})
	a.ctrl.BroadcastLobby()
}

// bind attaches username to this connection in the registry and marks the actor logged in
func (a *Actor) bind(username string) error {
	if !a.ctrl.registry.RegisterConnection(username, a) {
		return model.ErrAlreadyConnected
	}
	a.mu.Lock()
	a.username = username
	a.loggedIn = true
	a.ready = false
	a.mu.Unlock()
	return nil
}

func (a *Actor) handleLogout(ctx context.Context) {
	if _, err := a.requireLogin(); err != nil {
		a.Send(protocol.LogoutReply{Status: model.StatusFor(err)})
		return
	}
	a.leave(ctx, false)
	a.ctrl.BroadcastLobby()
	a.Send(protocol.LogoutReply{Status: model.StatusAccepted})
}

func (a *Actor) handleReady(req protocol.ReadyRequest) {
	a.mu.Lock()
	loggedIn := a.loggedIn
	if loggedIn {
		a.ready = req.Ready
	}
	a.mu.Unlock()

	if !loggedIn {
		a.Send(protocol.ReadyReply{Status: model.StatusFor(model.ErrNotLoggedIn)})
		return
	}
	a.Send(protocol.ReadyReply{Status: model.StatusAccepted})
	a.ctrl.BroadcastLobby()
}

func (a *Actor) handleUpdateProfile(ctx context.Context, req protocol.UpdateProfileRequest) {
	username, err := a.requireLogin()
	if err != nil {
		a.Send(protocol.UpdateProfileReply{Status: model.StatusFor(err)})
		return
	}

	profile, err := a.ctrl.players.UpdateProfile(ctx, username, model.ProfileUpdate{
		Password:    req.Password,
		Nationality: req.Nationality,
		DateOfBirth: req.DateOfBirth,
		Theme:       req.Theme,
	})
	if err != nil {
		a.Send(protocol.UpdateProfileReply{Status: model.StatusFor(err)})
		return
	}
	a.Send(protocol.UpdateProfileReply{Status: model.StatusAccepted})
	a.Send(protocol.ProfileUpdateNotification{Profile: profile})
}

func (a *Actor) handleUpdatePhoto(ctx context.Context, req protocol.UpdatePhotoRequest) {
	username, err := a.requireLogin()
	if err != nil {
		a.Send(protocol.UpdatePhotoReply{Status: model.StatusFor(err)})
		return
	}

	profile, err := a.ctrl.players.UpdatePhoto(ctx, username, req.Photo)
	if err != nil {
		a.Send(protocol.UpdatePhotoReply{Status: model.StatusFor(err)})
		return
	}
	a.Send(protocol.UpdatePhotoReply{Status: model.StatusAccepted})
	a.Send(protocol.ProfileUpdateNotification{Profile: profile})
}

func (a *Actor) handleLeaderboard() {
	if _, err := a.requireLogin(); err != nil {
		a.Send(protocol.ErrorNotification{Code: model.StatusFor(err), Description: loginRequired})
		return
	}
	a.Send(protocol.LeaderboardReply{Players: a.ctrl.players.Leaderboard()})
}

func (a *Actor) handleListPlayers() {
	if _, err := a.requireLogin(); err != nil {
		a.Send(protocol.ErrorNotification{Code: model.StatusFor(err), Description: loginRequired})
		return
	}
	a.Send(protocol.ListPlayersReply{Players: a.ctrl.Available()})
}
