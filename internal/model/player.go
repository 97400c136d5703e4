package model

import (
	"strings"
	"time"
)

// DefaultTheme is the theme assigned to newly registered players
const DefaultTheme = "classic"

// DateLayout is the wire and storage format for dates of birth
const DateLayout = "2006-01-02"

// Player is the durable record for one registered user
type Player struct {
	Username     string        `json:"username"`
	PasswordHash string        `json:"password_hash"` // bcrypt hash, never sent to clients
	Nationality  string        `json:"nationality"`
	DateOfBirth  time.Time     `json:"date_of_birth"`
	Photo        []byte        `json:"photo,omitempty"`
	Victories    int           `json:"victories"`
	Defeats      int           `json:"defeats"`
	TimeSpent    time.Duration `json:"time_spent"` // cumulative time charged across finished games
	Theme        string        `json:"theme"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Key returns the case-insensitive lookup key for the username
func (p *Player) Key() string {
	return UsernameKey(p.Username)
}

// Clone returns a deep copy so callers can hand records across goroutines
func (p *Player) Clone() *Player {
	c := *p
	if p.Photo != nil {
		c.Photo = append([]byte(nil), p.Photo...)
	}
	return &c
}

// Profile returns the public view of the player
func (p *Player) Profile() Profile {
	var photo []byte
	if p.Photo != nil {
		photo = append([]byte(nil), p.Photo...)
	}
	return Profile{
		Username:    p.Username,
		Nationality: p.Nationality,
		DateOfBirth: p.DateOfBirth.Format(DateLayout),
		Photo:       photo,
		Victories:   p.Victories,
		Defeats:     p.Defeats,
		TimeSpentMs: p.TimeSpent.Milliseconds(),
		Theme:       p.Theme,
	}
}

// Profile is what other players (and the owner) get to see of a record
type Profile struct {
	Username    string `json:"username"`
	Nationality string `json:"nationality"`
	DateOfBirth string `json:"date_of_birth"`
	Photo       []byte `json:"photo,omitempty"`
	Victories   int    `json:"victories"`
	Defeats     int    `json:"defeats"`
	TimeSpentMs int64  `json:"time_spent_ms"`
	Theme       string `json:"theme"`
}

// ProfileUpdate carries the optional fields of a profile edit; nil means unchanged
type ProfileUpdate struct {
	Password    *string
	Nationality *string
	DateOfBirth *string
	Theme       *string
}

// UsernameKey normalizes a username for case-insensitive comparison
func UsernameKey(username string) string {
	return strings.ToLower(username)
}
