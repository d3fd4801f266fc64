package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrRejected is returned when the submission gate rejects the session and
	// the user declines to revise it.
	ErrRejected = errors.New("tui: submission rejected")
)

// ErrTooManyAttempts is returned when a field stays invalid after the
// configured number of prompts.
var ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
