package protocol

import "github.com/mcoot/gomoku-go/internal/model"

// Type names a message on the wire
type Type string

// Client to server
const (
	TypeLogin         Type = "login"
	TypeLogout        Type = "logout"
	TypeRegister      Type = "register"
	TypeUpdateProfile Type = "update_profile"
	TypeUpdatePhoto   Type = "update_photo"
	TypeLeaderboard   Type = "leaderboard"
	TypeListPlayers   Type = "list_players"
	TypeReady         Type = "ready"
	TypeChallenge     Type = "challenge"
	TypeMove          Type = "move"
	TypeForfeitMatch  Type = "forfeit_match"
)

// Both directions
const (
	TypeChallengeReply Type = "challenge_reply"
)

// Server to client
const (
	TypeChallengeInvitation  Type = "challenge_invitation"
	TypeEndGame              Type = "end_game"
	TypeErrorNotification    Type = "error_notification"
	TypeGameStarted          Type = "game_started"
	TypeGameState            Type = "game_state"
	TypeLeaderboardReply     Type = "leaderboard_reply"
	TypeListPlayersReply     Type = "list_players_reply"
	TypeLoginReply           Type = "login_reply"
	TypeLogoutReply          Type = "logout_reply"
	TypeMoveReply            Type = "move_reply"
	TypeOpponentDisconnected Type = "opponent_disconnected"
	TypeProfileUpdate        Type = "profile_update_notification"
	TypeReadyReply           Type = "ready_reply"
	TypeRegisterReply        Type = "register_reply"
	TypeUpdatePhotoReply     Type = "update_photo_reply"
	TypeUpdateProfileReply   Type = "update_profile_reply"
)

// Message is anything that can travel in an Envelope
type Message interface {
	MessageType() Type
}

// Requests

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LogoutRequest struct{}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Nationality string `json:"nationality"`
	DateOfBirth string `json:"date_of_birth"`
}

// UpdateProfileRequest carries only the fields the client wants changed
type UpdateProfileRequest struct {
	Password    *string `json:"password,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Theme       *string `json:"theme,omitempty"`
}

type UpdatePhotoRequest struct {
	Photo []byte `json:"photo"`
}

type LeaderboardRequest struct{}

type ListPlayersRequest struct{}

type ReadyRequest struct {
	Ready bool `json:"ready"`
}

type ChallengeRequest struct {
	Opponent string `json:"opponent"`
}

// ChallengeReply answers a challenge; the server also sends it to report the outcome
type ChallengeReply struct {
	Status model.Status `json:"status"`
}

type MoveRequest struct {
	GameID model.GameID `json:"game_id"`
	Row    int          `json:"row"`
	Col    int          `json:"col"`
}

type ForfeitMatchRequest struct {
	GameID model.GameID `json:"game_id"`
}

// Server messages

type ChallengeInvitation struct {
	Challenger model.Profile `json:"challenger"`
}

type EndGame struct {
	GameID          model.GameID `json:"game_id"`
	Winner          string       `json:"winner"`
	TotalDurationMs int64        `json:"total_duration_ms"`
}

type ErrorNotification struct {
	Code        model.Status `json:"code"`
	Description string       `json:"description"`
}

type GameStarted struct {
	GameID model.GameID  `json:"game_id"`
	Black  model.Profile `json:"black"`
	White  model.Profile `json:"white"`
}

type GameState struct {
	model.Snapshot
}

type LeaderboardReply struct {
	Players []model.Profile `json:"players"`
}

type ListPlayersReply struct {
	Players []model.Profile `json:"players"`
}

type LoginReply struct {
	Status  model.Status   `json:"status"`
	Profile *model.Profile `json:"profile,omitempty"`
}

type LogoutReply struct {
	Status model.Status `json:"status"`
}

type MoveReply struct {
	GameID model.GameID `json:"game_id"`
	Status model.Status `json:"status"`
}

type OpponentDisconnected struct {
	GameID      model.GameID `json:"game_id"`
	Description string       `json:"description"`
}

type ProfileUpdateNotification struct {
	Profile model.Profile `json:"profile"`
}

type ReadyReply struct {
	Status model.Status `json:"status"`
}

type RegisterReply struct {
	Status model.Status `json:"status"`
}

type UpdatePhotoReply struct {
	Status model.Status `json:"status"`
}

type UpdateProfileReply struct {
	Status model.Status `json:"status"`
}

func (LoginRequest) MessageType() Type         { return TypeLogin }
func (LogoutRequest) MessageType() Type        { return TypeLogout }
func (RegisterRequest) MessageType() Type      { return TypeRegister }
func (UpdateProfileRequest) MessageType() Type { return TypeUpdateProfile }
func (UpdatePhotoRequest) MessageType() Type   { return TypeUpdatePhoto }
func (LeaderboardRequest) MessageType() Type   { return TypeLeaderboard }
func (ListPlayersRequest) MessageType() Type   { return TypeListPlayers }
func (ReadyRequest) MessageType() Type         { return TypeReady }
func (ChallengeRequest) MessageType() Type     { return TypeChallenge }
func (ChallengeReply) MessageType() Type       { return TypeChallengeReply }
func (MoveRequest) MessageType() Type          { return TypeMove }
func (ForfeitMatchRequest) MessageType() Type  { return TypeForfeitMatch }

func (ChallengeInvitation) MessageType() Type       { return TypeChallengeInvitation }
func (EndGame) MessageType() Type                   { return TypeEndGame }
func (ErrorNotification) MessageType() Type         { return TypeErrorNotification }
func (GameStarted) MessageType() Type               { return TypeGameStarted }
func (GameState) MessageType() Type                 { return TypeGameState }
func (LeaderboardReply) MessageType() Type          { return TypeLeaderboardReply }
func (ListPlayersReply) MessageType() Type          { return TypeListPlayersReply }
func (LoginReply) MessageType() Type                { return TypeLoginReply }
func (LogoutReply) MessageType() Type               { return TypeLogoutReply }
func (MoveReply) MessageType() Type                 { return TypeMoveReply }
func (OpponentDisconnected) MessageType() Type      { return TypeOpponentDisconnected }
func (ProfileUpdateNotification) MessageType() Type { return TypeProfileUpdate }
func (ReadyReply) MessageType() Type                { return TypeReadyReply }
func (RegisterReply) MessageType() Type             { return TypeRegisterReply }
func (UpdatePhotoReply) MessageType() Type          { return TypeUpdatePhotoReply }
func (UpdateProfileReply) MessageType() Type        { return TypeUpdateProfileReply }
