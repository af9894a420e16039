package quiz

import "errors"

var (
	// ErrLevelLocked is returned when the requested level exceeds the user's
	// unlocked level.
	ErrLevelLocked = errors.New("level is locked")
	// ErrInsufficientContent is returned when the pool cannot supply enough
	// signs or distinct distractor texts.
	ErrInsufficientContent = errors.New("not enough signs to build a quiz")
	// ErrSessionNotFound is returned for missing sessions and for sessions
	// owned by a different user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidIndex is returned for an out-of-range question index.
	ErrInvalidIndex = errors.New("invalid question index")
	// ErrAlreadyFinished is returned when a closed session is mutated again.
	ErrAlreadyFinished = errors.New("session already finished")
)
