package model

// Status is the closed vocabulary of reply codes shared with clients
type Status string

const (
	StatusAccepted           Status = "Accepted"
	StatusRejected           Status = "Rejected"
	StatusUsernameUnknown    Status = "UsernameUnknown"
	StatusWrongPassword      Status = "WrongPassword"
	StatusUsernameDuplicated Status = "UsernameDuplicated"
	StatusUsernameInvalid    Status = "UsernameInvalid"
	StatusPasswordInvalid    Status = "PasswordInvalid"
	StatusNationalityInvalid Status = "NationalityInvalid"
	StatusDateInvalid        Status = "DateInvalid"
	StatusInvalidMove        Status = "InvalidMove"
	StatusNotYourTurn        Status = "NotYourTurn"
	StatusGameNotFound       Status = "GameNotFound"
	StatusTimeout            Status = "Timeout"
	StatusCanceled           Status = "Canceled"
)

// Valid reports whether s belongs to the vocabulary
func (s Status) Valid() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusUsernameUnknown, StatusWrongPassword,
		StatusUsernameDuplicated, StatusUsernameInvalid, StatusPasswordInvalid,
		StatusNationalityInvalid, StatusDateInvalid, StatusInvalidMove, StatusNotYourTurn,
		StatusGameNotFound, StatusTimeout, StatusCanceled:
		return true
	}
	return false
}

// IsChallengeAnswer reports whether s may be sent as a reply to a challenge
func (s Status) IsChallengeAnswer() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusCanceled
}
