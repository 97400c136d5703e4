package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case LeaderboardResult:
		o.printPlayers(v.Players)
	case LobbyResult:
		if len(v.Available) == 0 {
			_, _ = fmt.Fprintln(o.w, "No players available")
			return
		}
		o.printPlayers(v.Available)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Username    string `json:"username"`
	Nationality string `json:"nationality"`
	Victories   int    `json:"victories"`
	Defeats     int    `json:"defeats"`
	TimeSpentMs int64  `json:"time_spent_ms"`
	Theme       string `json:"theme"`
	HasPhoto    bool   `json:"has_photo"`
}

// LeaderboardResult response type
type LeaderboardResult struct {
	Players []Player `json:"players"`
}

// LobbyResult response type
type LobbyResult struct {
	Available []Player `json:"available"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
	Games       int    `json:"games"`
}

func (o *Output) printPlayer(p Player) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Username, p.Nationality)
	_, _ = fmt.Fprintf(o.w, "Record: %d won, %d lost\n", p.Victories, p.Defeats)
	_, _ = fmt.Fprintf(o.w, "Time played: %s\n", formatMillis(p.TimeSpentMs))
	_, _ = fmt.Fprintf(o.w, "Theme: %s\n", p.Theme)
}

func (o *Output) printPlayers(players []Player) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tPLAYER\tNAT\tWON\tLOST\tTIME")
	for i, p := range players {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			i+1, p.Username, p.Nationality, p.Victories, p.Defeats, formatMillis(p.TimeSpentMs))
	}
	_ = tw.Flush()
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Players: %d\n", h.Players)
	_, _ = fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
	_, _ = fmt.Fprintf(o.w, "Games: %d\n", h.Games)
}

func formatMillis(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}
