package lobby

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
)

func (c *Controller) runBroadcaster(ctx context.Context) {
	c.logger.Info("lobby broadcaster started", slog.Duration("interval", c.cfg.BroadcastInterval))
	ticker := time.NewTicker(c.cfg.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("lobby broadcaster stopping")
			return
		case <-ticker.C:
			c.BroadcastLobby()
		}
	}
}

func (c *Controller) runSweeper(ctx context.Context) {
	c.logger.Info("timeout sweeper started", slog.Duration("interval", c.cfg.SweepInterval))
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("timeout sweeper stopping")
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep enforces clock expiry for every logged-in connection and returns the
// number of sessions it timed out
func (c *Controller) Sweep(ctx context.Context) int {
	timedOut := 0
	for _, a := range c.Actors() {
		n, err := c.sweepActor(ctx, a)
		if err != nil {
			c.logger.Error("sweep failed for connection", slog.String("error", err.Error()))
			continue
		}
		timedOut += n
	}
	return timedOut
}

func (c *Controller) sweepActor(ctx context.Context, a *Actor) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	username, loggedIn := a.identity()
	if !loggedIn {
		return 0, nil
	}
	for _, session := range c.registry.GetAllForPlayer(username) {
		if model.UsernameKey(session.CurrentPlayer()) != model.UsernameKey(username) {
			continue
		}
		if !session.IsCurrentPlayerTimeExpired() {
			continue
		}
		if session.TimeoutCurrentPlayer() {
			c.settle(ctx, session)
			n++
		}
	}
	return n, nil
}

func sortProfiles(profiles []model.Profile) {
	sort.Slice(profiles, func(i, j int) bool {
		return model.UsernameKey(profiles[i].Username) < model.UsernameKey(profiles[j].Username)
	})
}
