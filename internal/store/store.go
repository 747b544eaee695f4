package store

import "github.com/jpalmerr/queueboard/internal/engine"

// Action names the operation that produced an [Update].
type Action string

const (
	ActionInitialize Action = "initialize"
	ActionArrival    Action = "arrival"
	ActionDeparture  Action = "departure"
	ActionStop       Action = "stop"
	ActionReset      Action = "reset"

	// ActionSnapshot marks an update that reports state without a change,
	// such as the first event on a new stream.
	ActionSnapshot Action = "snapshot"
)

// Slot is the live view of one server: only the occupant's identity.
// ID is nil for an empty slot.
type Slot struct {
	ID *string `json:"id"`
}

// Status is a point-in-time view of the engine, shaped for JSON.
type Status struct {
	RunID       string   `json:"runId,omitempty"`
	Servers     []Slot   `json:"servers"`
	Queue       []string `json:"queue"`
	CurrentTime int64    `json:"currentTime"`
	IsRunning   bool     `json:"isRunning"`
	Completed   int      `json:"completed"`
}

// Summary holds the reporting view of the completed customers.
type Summary struct {
	RunID           string                   `json:"runId,omitempty"`
	CustomerSummary []engine.CustomerSummary `json:"customerSummary"`
	QueueMetrics    engine.Metrics           `json:"queueMetrics"`
	MetricsTable    []engine.Metric          `json:"metricsTable"`
	CurrentTime     int64                    `json:"currentTime"`
}

// Update is published to subscribers after every state change.
type Update struct {
	Action      Action `json:"action"`
	ServerIndex *int   `json:"serverIndex,omitempty"`
	Status      Status `json:"status"`
}

// Store defines the operations the HTTP layer performs on the live engine.
//
// Store implementations must be safe for concurrent access and must apply
// operations one at a time.
type Store interface {
	// Initialize starts a new run with n servers, discarding the previous one.
	Initialize(n int) error

	// Arrive admits a customer. No-op unless a run is active.
	Arrive()

	// Depart completes the customer at server index i. No-op unless a run
	// is active; out-of-range indexes are rejected.
	Depart(i int) error

	// Stop ends the active run.
	Stop()

	// Reset replaces the engine with a fresh uninitialized one.
	Reset()

	// Status returns the live view after refreshing the clock.
	Status() Status

	// Summary returns per-customer rows and metrics after refreshing the clock.
	Summary() Summary

	// Subscribe returns a channel that receives updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Update

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Update)
}
