package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrSessionNotFound = errors.New("battle session not found")
	ErrTooManySessions = errors.New("too many battle sessions")
	ErrNothingToRetry  = errors.New("no pending stat updates to retry")
	ErrPendingStats    = errors.New("previous battle has unapplied stat updates")
)
