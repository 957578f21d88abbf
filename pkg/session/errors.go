package session

import "errors"

// Validation errors are rejected at the action boundary: the phase and all
// session data stay unchanged and the message is surfaced to the user.
var (
	// ErrEmptyInput is returned when a capture or edit contains no text after
	// trimming whitespace.
	ErrEmptyInput = errors.New("input text cannot be empty")

	// ErrIndexOutOfRange is returned when a segment index does not address an
	// existing segment.
	ErrIndexOutOfRange = errors.New("segment index out of range")

	// ErrSubjectRequired is returned when a gated transition needs a meeting
	// subject that has not been provided.
	ErrSubjectRequired = errors.New("meeting subject is required")

	// ErrNoSegments is returned when generation is requested with an empty
	// segment store.
	ErrNoSegments = errors.New("no note segments have been captured")

	// ErrWrongPhase is returned when an action is not valid in the current
	// session phase.
	ErrWrongPhase = errors.New("action not available in current phase")

	// ErrNoPendingConfirm is returned when a confirm or cancel arrives while
	// no guarded action is pending.
	ErrNoPendingConfirm = errors.New("no confirmation is pending")
)
