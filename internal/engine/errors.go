package engine

import "github.com/pkg/errors"

var (
	// ErrInvalidConfiguration is returned by [Engine.Initialize] for a
	// non-positive server count.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrIndexOutOfRange is returned by [Engine.HandleDeparture] when the
	// server index is outside [0, numServers).
	ErrIndexOutOfRange = errors.New("server index out of range")
)
