package service

import "errors"

var (
	// ErrEmptyMessage rejects a send whose text is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrModeNotSet rejects a send before the user has picked a mode.
	ErrModeNotSet = errors.New("session mode is not set")
	// ErrInvalidMode rejects a switch to anything but discuss or build.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrRequestInFlight rejects a mutating operation while a gateway
	// request is still pending for the session.
	ErrRequestInFlight = errors.New("a request is already in flight")
	// ErrNoBuild rejects build confirmation when no build exists.
	ErrNoBuild = errors.New("no build to confirm")
)
