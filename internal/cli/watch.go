package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var username, password string
	var ready bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Log in over the live protocol and stream server events",
		Long: `Connect to /ws, log in and print every event the server pushes:
lobby listings, challenge invitations, game state and results.

With --ready the account is announced as available for challenges.
Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd.OutOrStdout(), username, password, ready)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	cmd.Flags().BoolVar(&ready, "ready", false, "Mark the account ready to be challenged")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// WatchEvent is one line of watch output in JSON mode
type WatchEvent struct {
	Time    time.Time       `json:"time"`
	Type    protocol.Type   `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func watch(ctx context.Context, w io.Writer, username, password string, ready bool) error {
	wsURL, err := client.WebSocketURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if err := sendFrame(conn, protocol.LoginRequest{Username: username, Password: password}); err != nil {
		return err
	}

	out := NewOutput(cfg.Output, w)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if cfg.Output != "json" {
					out.PrintMessage("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		msg, err := protocol.DecodeEvent(data)
		if err != nil {
			return fmt.Errorf("unexpected frame: %w", err)
		}
		printEvent(w, data, msg)

		if reply, ok := msg.(protocol.LoginReply); ok {
			if reply.Status != model.StatusAccepted {
				return errors.New("login failed: " + string(reply.Status))
			}
			if ready {
				if err := sendFrame(conn, protocol.ReadyRequest{Ready: true}); err != nil {
					return err
				}
			}
		}
	}
}

func sendFrame(conn *websocket.Conn, msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", msg.MessageType(), err)
	}
	return nil
}

func printEvent(w io.Writer, raw []byte, msg protocol.Message) {
	now := time.Now()

	if cfg.Output == "json" {
		var env protocol.Envelope
		_ = json.Unmarshal(raw, &env)
		line, _ := json.Marshal(WatchEvent{Time: now, Type: msg.MessageType(), Payload: env.Payload})
		_, _ = fmt.Fprintln(w, string(line))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, msg.MessageType(), describe(msg))
}

func describe(msg protocol.Message) string {
	switch m := msg.(type) {
	case protocol.LoginReply:
		return string(m.Status)
	case protocol.ListPlayersReply:
		names := make([]string, len(m.Players))
		for i, p := range m.Players {
			names[i] = p.Username
		}
		return fmt.Sprintf("%d available %v", len(names), names)
	case protocol.ChallengeInvitation:
		return "challenged by " + m.Challenger.Username
	case protocol.GameStarted:
		return fmt.Sprintf("game %s: %s (black) vs %s (white)", m.GameID, m.Black.Username, m.White.Username)
	case protocol.GameState:
		return fmt.Sprintf("game %s: %s to play", m.GameID, m.NextPlayerColor)
	case protocol.EndGame:
		return fmt.Sprintf("game %s won by %s after %s", m.GameID, m.Winner, formatMillis(m.TotalDurationMs))
	case protocol.ErrorNotification:
		return fmt.Sprintf("%s: %s", m.Code, m.Description)
	default:
		data, _ := json.Marshal(msg)
		return string(data)
	}
}
