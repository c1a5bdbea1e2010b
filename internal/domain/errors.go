package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrClosed         = errors.New("closed")
	ErrNoAudio        = errors.New("audio device unavailable")
	ErrUnknownCommand = errors.New("unknown command")
)
