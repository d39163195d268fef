package ward

import "errors"

var (
	ErrNotFound        = errors.New("room not found")
	ErrRoomUnavailable = errors.New("room is not available")
	ErrNoRoomAssigned  = errors.New("no room assigned")
	ErrPatientHasRoom  = errors.New("patient already holds a room")
	ErrInvalidInput    = errors.New("invalid input")
)
