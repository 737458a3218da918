package study

import "errors"

// Sentinel errors for the study package.
// Use errors.Is to check: errors.Is(err, study.ErrEmptySet)
var (
	ErrSetNotFound   = errors.New("study: set not found")
	ErrEmptySet      = errors.New("study: set has no cards")
	ErrCardIndex     = errors.New("study: card index out of range")
	ErrSessionClosed = errors.New("study: session closed")
)
