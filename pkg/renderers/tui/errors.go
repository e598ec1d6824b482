package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a page is still invalid after the
	// configured number of attempts.
	ErrTooManyAttempts = errors.New("tui: too many attempts")
	// ErrLookupNotReady reports a lookup whose parameters are not yet
	// available from the current values.
	ErrLookupNotReady = errors.New("tui: lookup parameters missing")
)
