package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrMalformed      = errors.New("malformed message")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Envelope is the JSON frame carried on the wire
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var requests = map[Type]func() Message{
	TypeLogin:          func() Message { return &LoginRequest{} },
	TypeLogout:         func() Message { return &LogoutRequest{} },
	TypeRegister:       func() Message { return &RegisterRequest{} },
	TypeUpdateProfile:  func() Message { return &UpdateProfileRequest{} },
	TypeUpdatePhoto:    func() Message { return &UpdatePhotoRequest{} },
	TypeLeaderboard:    func() Message { return &LeaderboardRequest{} },
	TypeListPlayers:    func() Message { return &ListPlayersRequest{} },
	TypeReady:          func() Message { return &ReadyRequest{} },
	TypeChallenge:      func() Message { return &ChallengeRequest{} },
	TypeChallengeReply: func() Message { return &ChallengeReply{} },
	TypeMove:           func() Message { return &MoveRequest{} },
	TypeForfeitMatch:   func() Message { return &ForfeitMatchRequest{} },
}

var events = map[Type]func() Message{
	TypeChallengeInvitation:  func() Message { return &ChallengeInvitation{} },
	TypeChallengeReply:       func() Message { return &ChallengeReply{} },
	TypeEndGame:              func() Message { return &EndGame{} },
	TypeErrorNotification:    func() Message { return &ErrorNotification{} },
	TypeGameStarted:          func() Message { return &GameStarted{} },
	TypeGameState:            func() Message { return &GameState{} },
	TypeLeaderboardReply:     func() Message { return &LeaderboardReply{} },
	TypeListPlayersReply:     func() Message { return &ListPlayersReply{} },
	TypeLoginReply:           func() Message { return &LoginReply{} },
	TypeLogoutReply:          func() Message { return &LogoutReply{} },
	TypeMoveReply:            func() Message { return &MoveReply{} },
	TypeOpponentDisconnected: func() Message { return &OpponentDisconnected{} },
	TypeProfileUpdate:        func() Message { return &ProfileUpdateNotification{} },
	TypeReadyReply:           func() Message { return &ReadyReply{} },
	TypeRegisterReply:        func() Message { return &RegisterReply{} },
	TypeUpdatePhotoReply:     func() Message { return &UpdatePhotoReply{} },
	TypeUpdateProfileReply:   func() Message { return &UpdateProfileReply{} },
}

// Encode wraps msg in an Envelope and marshals it
func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", msg.MessageType(), err)
	}
	return json.Marshal(Envelope{Type: msg.MessageType(), Payload: payload})
}

// DecodeRequest parses a frame sent by a client.
// The returned message is a value, never a pointer.
func DecodeRequest(data []byte) (Message, error) {
	msg, err := decode(data, requests)
	if err != nil {
		return nil, err
	}
	if reply, ok := msg.(ChallengeReply); ok && !reply.Status.IsChallengeAnswer() {
		return nil, fmt.Errorf("%w: challenge reply status %q", ErrInvalidPayload, reply.Status)
	}
	return msg, nil
}

// DecodeEvent parses a frame sent by the server
func DecodeEvent(data []byte) (Message, error) {
	return decode(data, events)
}

func decode(data []byte, table map[Type]func() Message) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	factory, ok := table[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	target := factory()
	payload := bytes.TrimSpace(env.Payload)
	if len(payload) > 0 && !bytes.Equal(payload, []byte("null")) {
		if err := json.Unmarshal(payload, target); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
		}
	}
	return deref(target), nil
}

func deref(m Message) Message {
	switch v := m.(type) {
	case *LoginRequest:
		return *v
	case *LogoutRequest:
		return *v
	case *RegisterRequest:
		return *v
	case *UpdateProfileRequest:
		return *v
	case *UpdatePhotoRequest:
		return *v
	case *LeaderboardRequest:
		return *v
	case *ListPlayersRequest:
		return *v
	case *ReadyRequest:
		return *v
	case *ChallengeRequest:
		return *v
	case *ChallengeReply:
		return *v
	case *MoveRequest:
		return *v
	case *ForfeitMatchRequest:
		return *v
	case *ChallengeInvitation:
		return *v
	case *EndGame:
		return *v
	case *ErrorNotification:
		return *v
	case *GameStarted:
		return *v
	case *GameState:
		return *v
	case *LeaderboardReply:
		return *v
	case *ListPlayersReply:
		return *v
	case *LoginReply:
		return *v
	case *LogoutReply:
		return *v
	case *MoveReply:
		return *v
	case *OpponentDisconnected:
		return *v
	case *ProfileUpdateNotification:
		return *v
	case *ReadyReply:
		return *v
	case *RegisterReply:
		return *v
	case *UpdatePhotoReply:
		return *v
	case *UpdateProfileReply:
		return *v
	default:
		return m
	}
}
