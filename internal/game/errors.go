package game

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrNotHost            = errors.New("only host can perform this action")
	ErrRoundStarting      = errors.New("round start already in progress")
	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrInvalidIntent      = errors.New("invalid intent")
	ErrContentUnavailable = errors.New("content unavailable")
)

// IsUserVisible reports whether err should be surfaced to the caller.
// Every other rejection is dropped silently.
func IsUserVisible(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrRoomFull)
}
