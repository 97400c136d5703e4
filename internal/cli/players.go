package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/config"
	"github.com/mcoot/gomoku-go/internal/factory"
	"github.com/mcoot/gomoku-go/internal/services/players"
)

func newLeaderboardCmd() *cobra.Command {
	var local bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the player ranking",
		Long: `Show every player ordered by victories, then fewest defeats, then least time played.

By default the ranking is fetched from a running server. With --local the
configured player store is read directly, which works while the server is down.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LeaderboardResult
			if local {
				ranked, err := localLeaderboard(cmd.Context(), configPath)
				if err != nil {
					return err
				}
				result = ranked
			} else if err := client.Get("/api/v1/leaderboard", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Read the player store directly instead of the server")
	cmd.Flags().StringVar(&configPath, "config", "", "Server config file used to locate the store (with --local)")

	return cmd
}

func localLeaderboard(ctx context.Context, configPath string) (LeaderboardResult, error) {
	serverCfg, err := config.Load(configPath)
	if err != nil {
		return LeaderboardResult{}, err
	}
	store, err := factory.OpenStore(serverCfg.Store, newLogger(serverCfg, cfg.Verbose))
	if err != nil {
		return LeaderboardResult{}, err
	}
	defer func() { _ = store.Close() }()

	records, err := store.LoadAll(ctx)
	if err != nil {
		return LeaderboardResult{}, fmt.Errorf("reading players: %w", err)
	}

	result := LeaderboardResult{Players: []Player{}}
	for _, p := range players.Rank(records) {
		result.Players = append(result.Players, Player{
			Username:    p.Username,
			Nationality: p.Nationality,
			Victories:   p.Victories,
			Defeats:     p.Defeats,
			TimeSpentMs: p.TimeSpentMs,
			Theme:       p.Theme,
			HasPhoto:    len(p.Photo) > 0,
		})
	}
	return result, nil
}

func newPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <username>",
		Short: "Show one player's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get("/api/v1/players/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLobbyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lobby",
		Short: "List players ready to accept a challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LobbyResult
			if err := client.Get("/api/v1/lobby", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
