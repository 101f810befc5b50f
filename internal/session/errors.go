package session

import "errors"

var (
	// ErrEmptyTeamName is returned when a blank team name is submitted.
	ErrEmptyTeamName = errors.New("team name must not be empty")

	// ErrHintLimit is returned when a room's hint ceiling is reached.
	// The cap is enforced by the mutator, not left to callers.
	ErrHintLimit = errors.New("hint limit reached for room")

	// ErrDevModeDisabled is returned by GoToRoom outside dev mode.
	ErrDevModeDisabled = errors.New("room jump requires dev mode")

	// ErrRoomMismatch is returned when an answer is submitted for a room
	// other than the active one.
	ErrRoomMismatch = errors.New("answer submitted for inactive room")

	// ErrNotPuzzleRoom is returned for operations that only apply to
	// rooms 1..5.
	ErrNotPuzzleRoom = errors.New("not a puzzle room")
)
