package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jpalmerr/queueboard/internal/engine"
)

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 100

// Factory builds a new, uninitialized engine.
type Factory func() *engine.Engine

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore serializes every engine call behind one mutex. Updates are
// published while the mutex is held, so subscribers observe them in the
// order the operations were applied.
type MemoryStore struct {
	mu      sync.Mutex
	newEng  Factory
	eng     *engine.Engine
	runID   string
	newUUID func() string

	subscribers map[chan Update]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a [MemoryStore] holding a fresh engine from
// newEngine. A nil factory uses the system clock.
func NewMemoryStore(newEngine Factory) *MemoryStore {
	if newEngine == nil {
		newEngine = func() *engine.Engine { return engine.New(nil) }
	}
	return &MemoryStore{
		newEng:      newEngine,
		eng:         newEngine(),
		newUUID:     uuid.NewString,
		subscribers: make(map[chan Update]struct{}),
	}
}

// Initialize starts a new run with n servers under a new run ID.
// On error the previous run is left untouched.
func (m *MemoryStore) Initialize(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.eng.Initialize(n); err != nil {
		return err
	}
	m.runID = m.newUUID()
	m.publish(ActionInitialize, nil)
	return nil
}

// Arrive admits a customer into the active run.
func (m *MemoryStore) Arrive() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.eng.IsRunning() {
		return
	}
	m.eng.HandleArrival()
	m.publish(ActionArrival, nil)
}

// Depart completes the customer at server index i.
func (m *MemoryStore) Depart(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.eng.IsRunning() {
		return nil
	}
	if err := m.eng.HandleDeparture(i); err != nil {
		return err
	}
	m.publish(ActionDeparture, &i)
	return nil
}

// Stop ends the active run. Stopping a stopped run republishes its state.
func (m *MemoryStore) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eng.HandleStop()
	m.publish(ActionStop, nil)
}

// Reset discards the engine and its run.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eng = m.newEng()
	m.runID = ""
	m.publish(ActionReset, nil)
}

// Status returns the live view of the engine.
func (m *MemoryStore) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eng.RefreshTime()
	return m.status()
}

// Summary returns the completed-customer rows and queue metrics.
func (m *MemoryStore) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eng.RefreshTime()
	metrics := m.eng.CalculateQueueMetrics()
	return Summary{
		RunID:           m.runID,
		CustomerSummary: m.eng.CustomerSummaries(),
		QueueMetrics:    metrics,
		MetricsTable:    metrics.Table(),
		CurrentTime:     m.eng.CurrentTime(),
	}
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Update {
	ch := make(chan Update, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Update) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// status builds a Status from the engine. Caller holds m.mu.
func (m *MemoryStore) status() Status {
	ids := m.eng.Servers()
	slots := make([]Slot, len(ids))
	for i, id := range ids {
		if id != "" {
			id := id
			slots[i].ID = &id
		}
	}

	return Status{
		RunID:       m.runID,
		Servers:     slots,
		Queue:       m.eng.Queue(),
		CurrentTime: m.eng.CurrentTime(),
		IsRunning:   m.eng.IsRunning(),
		Completed:   m.eng.CompletedCount(),
	}
}

// publish sends the post-operation status to all subscribers. Caller holds m.mu.
//
// This is non-blocking: if a subscriber's channel buffer is full, the update
// is dropped for that subscriber rather than blocking the engine.
func (m *MemoryStore) publish(action Action, serverIndex *int) {
	update := Update{
		Action:      action,
		ServerIndex: serverIndex,
		Status:      m.status(),
	}

	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- update:
		default:
			// subscriber is slow, drop the update
		}
	}
}
