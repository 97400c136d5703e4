package lobby

import (
	"context"
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/game"
)

// settle performs end-of-game bookkeeping for a finished session. Callers invoke
// it only after their own call moved the session to its terminal state, so each
// session is settled once.
func (c *Controller) settle(ctx context.Context, session *game.Session) {
	result, ok := session.Result()
	if !ok {
		c.logger.Warn("settle called on active session", slog.String("game_id", string(session.ID())))
		return
	}

	if result.Reason == model.EndReasonTimeout {
		c.sendTo(result.Loser, protocol.ErrorNotification{
			Code:        model.StatusTimeout,
			Description: "your time ran out",
		})
	}

	outcome, err := c.players.RecordResult(ctx, result.Winner, result.Loser, result.WinnerSpent, result.LoserSpent)
	if err != nil {
		c.logger.Warn("failed to record game result",
			slog.String("game_id", string(result.GameID)),
			slog.String("error", err.Error()),
		)
	} else {
		c.sendTo(result.Winner, protocol.ProfileUpdateNotification{Profile: outcome.Winner})
		c.sendTo(result.Loser, protocol.ProfileUpdateNotification{Profile: outcome.Loser})
	}

	end := protocol.EndGame{
		GameID:          result.GameID,
		Winner:          result.Winner,
		TotalDurationMs: result.Duration.Milliseconds(),
	}
	c.sendTo(result.Winner, end)
	c.sendTo(result.Loser, end)

	c.registry.UnregisterSession(result.GameID)

	c.logger.Info("game settled",
		slog.String("game_id", string(result.GameID)),
		slog.String("winner", result.Winner),
		slog.String("loser", result.Loser),
		slog.String("reason", string(result.Reason)),
		slog.Duration("duration", result.Duration),
	)
}
