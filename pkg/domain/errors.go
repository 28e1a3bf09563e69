package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionEnded is returned when a turn is submitted to a terminated session.
var ErrSessionEnded = errors.New("session already ended")

// ErrUnknownIntent is returned when an injected intent event names an intent
// the bot does not define.
var ErrUnknownIntent = errors.New("unknown intent")
