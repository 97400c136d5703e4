package lobby

import (
	"context"
	"errors"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/game"
)

// sessionFor resolves a game the logged-in actor takes part in
func (a *Actor) sessionFor(id model.GameID) (string, *game.Session, error) {
	username, err := a.requireLogin()
	if err != nil {
		return "", nil, err
	}
	session, ok := a.ctrl.registry.GetForPlayerAndID(username, id)
	if !ok {
		return username, nil, model.ErrGameNotFound
	}
	return username, session, nil
}

func (a *Actor) handleMove(ctx context.Context, req protocol.MoveRequest) {
	username, session, err := a.sessionFor(req.GameID)
	if err != nil {
		a.Send(protocol.MoveReply{GameID: req.GameID, Status: model.StatusFor(err)})
		return
	}

	outcome := session.AttemptMove(req.Row, req.Col, username)
	reply := protocol.MoveReply{GameID: req.GameID, Status: model.StatusFor(outcome.Err())}
	switch outcome {
	case model.MoveAccepted:
		a.ctrl.sendTo(session.Opponent(username), protocol.GameState{Snapshot: session.Snapshot()})
		a.Send(reply)
	case model.MoveWin:
		a.ctrl.sendTo(session.Opponent(username), protocol.GameState{Snapshot: session.Snapshot()})
		a.Send(reply)
		a.ctrl.settle(ctx, session)
	case model.MoveTimeout:
		a.Send(reply)
		a.ctrl.settle(ctx, session)
	default:
		a.Send(reply)
	}
}

func (a *Actor) handleForfeit(ctx context.Context, req protocol.ForfeitMatchRequest) {
	username, session, err := a.sessionFor(req.GameID)
	if err != nil {
		description := "no such game: " + string(req.GameID)
		if errors.Is(err, model.ErrNotLoggedIn) {
			description = loginRequired
		}
		a.Send(protocol.ErrorNotification{Code: model.StatusFor(err), Description: description})
		return
	}
	if session.Forfeit(username) {
		a.ctrl.settle(ctx, session)
	}
}
