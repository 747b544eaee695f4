package engine

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"k8s.io/utils/clock"
)

// Engine owns the state of one simulation run.
//
// The zero value is not usable; create engines with [New]. A new engine is
// uninitialized: it has no servers and ignores arrivals and departures
// until [Engine.Initialize] is called.
type Engine struct {
	clock clock.PassiveClock

	numServers  int
	servers     []*Customer
	queue       []*Customer
	completed   []*Customer
	currentTime int64
	running     bool
	startTime   time.Time
	started     bool

	// issued counts customers created in this run and drives ID assignment.
	issued int
}

// New creates an uninitialized [Engine] reading time from clk.
// A nil clock means the system clock.
func New(clk clock.PassiveClock) *Engine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Engine{clock: clk}
}

// Initialize discards any previous run and starts a new one with n empty
// server slots.
func (e *Engine) Initialize(n int) error {
	if n <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "server count must be positive, got %d", n)
	}

	e.numServers = n
	e.servers = make([]*Customer, n)
	e.queue = nil
	e.completed = nil
	e.currentTime = 0
	e.issued = 0
	e.startTime = e.clock.Now()
	e.started = true
	e.running = true
	return nil
}

// RefreshTime recomputes the current time from the clock. It is a no-op
// before the first Initialize.
func (e *Engine) RefreshTime() {
	if !e.started {
		return
	}
	e.currentTime = int64(e.clock.Since(e.startTime) / time.Second)
}

// HandleArrival admits a new customer. The customer takes the lowest-index
// free server, or joins the back of the queue when every server is busy.
// It is a no-op unless the engine is running.
func (e *Engine) HandleArrival() {
	if !e.running {
		return
	}
	e.RefreshTime()

	e.issued++
	c := &Customer{
		ID:             "C" + strconv.Itoa(e.issued),
		ArrivalTime:    e.currentTime,
		QueueStartTime: stamp(e.currentTime),
	}

	for i, s := range e.servers {
		if s == nil {
			c.ServiceStartTime = stamp(e.currentTime)
			c.QueueStartTime = nil
			e.servers[i] = c
			return
		}
	}
	e.queue = append(e.queue, c)
}

// HandleDeparture completes the customer at server index i, if any, and
// hands the slot to the head of the queue in the same step. An empty slot
// is not an error. It is a no-op unless the engine is running.
func (e *Engine) HandleDeparture(i int) error {
	if !e.running {
		return nil
	}
	if i < 0 || i >= e.numServers {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, servers %d", i, e.numServers)
	}
	e.RefreshTime()

	if c := e.servers[i]; c != nil {
		c.LeavingTime = stamp(e.currentTime)
		e.completed = append(e.completed, c)
	}

	if len(e.queue) == 0 {
		e.servers[i] = nil
		return nil
	}

	next := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	next.ServiceStartTime = stamp(e.currentTime)
	e.servers[i] = next
	return nil
}

// HandleStop ends the run. Reads stay valid and reflect the frozen state;
// only a new Initialize starts another run.
func (e *Engine) HandleStop() {
	e.running = false
	e.RefreshTime()
}

// NumServers returns the number of server slots of the current run.
func (e *Engine) NumServers() int {
	return e.numServers
}

// CurrentTime returns the time, in seconds, as of the last refresh.
func (e *Engine) CurrentTime() int64 {
	return e.currentTime
}

// IsRunning reports whether arrivals and departures are accepted.
func (e *Engine) IsRunning() bool {
	return e.running
}

// Servers returns the customer ID held by each slot, "" for an empty slot.
func (e *Engine) Servers() []string {
	ids := make([]string, len(e.servers))
	for i, c := range e.servers {
		if c != nil {
			ids[i] = c.ID
		}
	}
	return ids
}

// Queue returns the IDs of waiting customers, head first.
func (e *Engine) Queue() []string {
	ids := make([]string, len(e.queue))
	for i, c := range e.queue {
		ids[i] = c.ID
	}
	return ids
}

// CompletedCount returns the number of customers that have left a server.
func (e *Engine) CompletedCount() int {
	return len(e.completed)
}

// CompletedCustomers returns copies of the completed customers in
// departure order.
func (e *Engine) CompletedCustomers() []Customer {
	out := make([]Customer, len(e.completed))
	for i, c := range e.completed {
		out[i] = *c
	}
	return out
}
