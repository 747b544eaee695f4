package queueboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/jpalmerr/queueboard/dashboard"
	"github.com/jpalmerr/queueboard/internal/engine"
	"github.com/jpalmerr/queueboard/internal/server"
	"github.com/jpalmerr/queueboard/internal/store"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const defaultPort = 8080

// QueueBoard is the main orchestrator for the simulation and its dashboard.
//
// QueueBoard owns the live engine, serves the HTTP API and dashboard, and
// reports every state change to the log and to registered callbacks. It is
// created using [New] with functional options and started with
// [QueueBoard.Start].
//
// The typical lifecycle is:
//
//	qb, err := queueboard.New(queueboard.WithServers(2))
//	if err != nil {
//	    logrus.WithError(err).Fatal("failed to create queueboard")
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	qb.Start(ctx) // blocks until context cancelled
type QueueBoard struct {
	title          string
	port           int
	servers        int
	logger         logrus.FieldLogger
	clock          clock.PassiveClock
	eventCallbacks []func(Event)
}

// New creates a new [QueueBoard] instance with the given options.
//
// Defaults:
//   - Port: 8080
//   - Servers: none; the first run starts when a client initializes one
//   - Clock: system clock
//   - Logger: logrus standard logger
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*QueueBoard, error) {
	cfg := &qbConfig{
		port: defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	clk := cfg.clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &QueueBoard{
		title:          cfg.title,
		port:           cfg.port,
		servers:        cfg.servers,
		logger:         logger,
		clock:          clk,
		eventCallbacks: cfg.eventCallbacks,
	}, nil
}

// Start serves the API and dashboard until the context is cancelled.
//
// If [WithServers] was given, a run is initialized before the server
// accepts connections. Every state change is logged at debug level and
// passed to the registered callbacks.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start or the initial run cannot be initialized.
func (qb *QueueBoard) Start(ctx context.Context) error {
	qb.logger.WithField("servers", qb.servers).Info("queueboard starting")
	qb.logger.WithField("url", fmt.Sprintf("http://localhost:%d", qb.port)).Info("dashboard available")

	if ctx.Err() != nil {
		return nil
	}

	statusStore := store.NewMemoryStore(func() *engine.Engine {
		return engine.New(qb.clock)
	})

	// subscribe before initializing so the first run is reported
	updates := statusStore.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range updates {
			qb.logUpdate(update)

			if len(qb.eventCallbacks) > 0 {
				event := updateToEvent(update)
				for _, cb := range qb.eventCallbacks {
					invokeCallbackSafe(cb, event, qb.logger)
				}
			}
		}
	}()

	cleanup := func() {
		statusStore.Unsubscribe(updates) // closes updates
		wg.Wait()
	}

	if qb.servers > 0 {
		if err := statusStore.Initialize(qb.servers); err != nil {
			cleanup()
			return fmt.Errorf("failed to initialize run: %w", err)
		}
	}

	httpServer := server.NewServer(statusStore, qb.port, dashboard.Assets, qb.title, qb.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	qb.logger.Info("queueboard stopped")
	return nil
}

// Port returns the configured HTTP port.
func (qb *QueueBoard) Port() int {
	return qb.port
}

// Servers returns the number of servers the first run starts with, or 0.
func (qb *QueueBoard) Servers() int {
	return qb.servers
}

func (qb *QueueBoard) logUpdate(u store.Update) {
	fields := logrus.Fields{
		"action":       u.Action,
		"current_time": u.Status.CurrentTime,
		"queue_length": len(u.Status.Queue),
		"completed":    u.Status.Completed,
	}
	if u.Status.RunID != "" {
		fields["run_id"] = u.Status.RunID
	}
	if u.ServerIndex != nil {
		fields["server_index"] = *u.ServerIndex
	}
	qb.logger.WithFields(fields).Debug("simulation updated")
}

// updateToEvent converts a store update to the public event type.
func updateToEvent(u store.Update) Event {
	servers := make([]string, len(u.Status.Servers))
	for i, slot := range u.Status.Servers {
		if slot.ID != nil {
			servers[i] = *slot.ID
		}
	}

	index := -1
	if u.ServerIndex != nil {
		index = *u.ServerIndex
	}

	return Event{
		Action:      string(u.Action),
		RunID:       u.Status.RunID,
		ServerIndex: index,
		Servers:     servers,
		Queue:       append([]string(nil), u.Status.Queue...),
		CurrentTime: u.Status.CurrentTime,
		IsRunning:   u.Status.IsRunning,
		Completed:   u.Status.Completed,
	}
}

// invokeCallbackSafe calls an event callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Event), event Event, logger logrus.FieldLogger) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"panic":  r,
				"action": event.Action,
			}).Error("event callback panicked")
		}
	}()
	cb(event)
}
