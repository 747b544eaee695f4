package queueboard

// Event describes one state change of the running simulation.
//
// Events are delivered to callbacks registered with [WithEventCallback]
// after the change has been applied. Slices are copies owned by the
// receiver.
type Event struct {
	// Action is the operation that produced the event: "initialize",
	// "arrival", "departure", "stop" or "reset".
	Action string

	// RunID identifies the run; empty after a reset.
	RunID string

	// ServerIndex is the slot of a departure, -1 for other actions.
	ServerIndex int

	// Servers holds the customer ID in each slot, "" for an empty slot.
	Servers []string

	// Queue holds the IDs of waiting customers, head first.
	Queue []string

	// CurrentTime is the simulation time in seconds.
	CurrentTime int64

	// IsRunning reports whether arrivals and departures are accepted.
	IsRunning bool

	// Completed is the number of customers that have left.
	Completed int
}
