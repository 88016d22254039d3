package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when the form is still invalid after the
	// configured number of correction rounds.
	ErrTooManyAttempts = errors.New("tui: form still invalid after retries")
	// ErrUnanswerable is returned when an invalid field has no terminal
	// control, so asking again cannot fix it.
	ErrUnanswerable = errors.New("tui: field cannot be answered in the terminal")
)
