package queueboard

import (
	"errors"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// qbConfig holds mutable state during QueueBoard construction.
type qbConfig struct {
	title          string
	port           int
	servers        int
	logger         logrus.FieldLogger
	clock          clock.PassiveClock
	eventCallbacks []func(Event)
}

// Option is a function that configures a [QueueBoard] instance during construction.
//
// Options return an error if validation fails.
type Option func(*qbConfig) error

// WithPort sets the HTTP port for the dashboard and API.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *qbConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "QueueBoard".
func WithTitle(title string) Option {
	return func(cfg *qbConfig) error {
		cfg.title = title
		return nil
	}
}

// WithServers starts a run with n servers as soon as [QueueBoard.Start]
// is called. Without it the first run begins when a client initializes one.
//
// Returns an error if n is not positive.
func WithServers(n int) Option {
	return func(cfg *qbConfig) error {
		if n <= 0 {
			return errors.New("servers must be positive")
		}
		cfg.servers = n
		return nil
	}
}

// WithLogger sets the logger for the QueueBoard instance.
// If not specified, the logrus standard logger is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *qbConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the clock the simulation reads time from.
// If not specified, the system clock is used.
//
// Returns an error if the clock is nil.
func WithClock(clk clock.PassiveClock) Option {
	return func(cfg *qbConfig) error {
		if clk == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = clk
		return nil
	}
}

// WithEventCallback registers a function to be called after every state change.
//
// Multiple callbacks may be registered; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. They are invoked synchronously
// from a single goroutine fed by a buffered channel; a slow callback makes
// later events drop. Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithEventCallback(cb func(Event)) Option {
	return func(cfg *qbConfig) error {
		if cb == nil {
			return nil
		}
		cfg.eventCallbacks = append(cfg.eventCallbacks, cb)
		return nil
	}
}
