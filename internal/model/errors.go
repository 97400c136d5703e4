package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidNationality = errors.New("invalid nationality")
	ErrInvalidDate        = errors.New("invalid date")
	ErrPhotoTooLarge      = errors.New("photo too large")

	// Connection state errors
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrAlreadyLoggedIn  = errors.New("already logged in")
	ErrAlreadyConnected = errors.New("username is connected elsewhere")
	ErrChallengeInvalid = errors.New("challenge not allowed")

	// Game errors
	ErrGameNotFound = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrInvalidMove  = errors.New("invalid move")
	ErrTimeout      = errors.New("turn clock expired")
)

// StatusFor maps an error to the closest status in the wire vocabulary
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusAccepted
	case errors.Is(err, ErrPlayerNotFound):
		return StatusUsernameUnknown
	case errors.Is(err, ErrInvalidCredentials):
		return StatusWrongPassword
	case errors.Is(err, ErrUsernameTaken):
		return StatusUsernameDuplicated
	case errors.Is(err, ErrInvalidUsername):
		return StatusUsernameInvalid
	case errors.Is(err, ErrInvalidPassword):
		return StatusPasswordInvalid
	case errors.Is(err, ErrInvalidNationality):
		return StatusNationalityInvalid
	case errors.Is(err, ErrInvalidDate):
		return StatusDateInvalid
	case errors.Is(err, ErrGameNotFound):
		return StatusGameNotFound
	case errors.Is(err, ErrNotYourTurn):
		return StatusNotYourTurn
	case errors.Is(err, ErrInvalidMove):
		return StatusInvalidMove
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	default:
		return StatusRejected
	}
}
