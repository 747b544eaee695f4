package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func newFakeClock() *clocktesting.FakeClock {
	return clocktesting.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

// collect reads results until n have arrived or the channel closes.
func collect(t *testing.T, ch <-chan Result, n int) []Result {
	t.Helper()
	var out []Result
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case r, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, r)
		case <-timeout:
			t.Fatalf("received %d/%d results", len(out), n)
		}
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	c := NewClient("http://localhost", time.Second)

	tests := []struct {
		name   string
		cfg    Config
		client *Client
	}{
		{name: "nil client", cfg: Config{Tick: time.Second}},
		{name: "zero tick", cfg: Config{}, client: c},
		{name: "negative arrival rate", cfg: Config{Tick: time.Second, ArrivalRate: -1}, client: c},
		{name: "negative service rate", cfg: Config{Tick: time.Second, ServiceRate: -1}, client: c},
		{name: "negative duration", cfg: Config{Tick: time.Second, Duration: -time.Second}, client: c},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.client, nil, testLogger())
			assert.Error(t, err)
		})
	}
}

func TestDriver_SamplingIsSeeded(t *testing.T) {
	c := NewClient("http://localhost", time.Second)
	cfg := Config{ArrivalRate: 30, ServiceRate: 6, Tick: time.Second, Seed: 42}

	d1, err := New(cfg, c, newFakeClock(), testLogger())
	require.NoError(t, err)
	d2, err := New(cfg, c, newFakeClock(), testLogger())
	require.NoError(t, err)

	busy := []bool{true, true, false, true}
	for i := 0; i < 20; i++ {
		dt := cfg.Tick.Minutes()
		assert.Equal(t, d1.arrivals(dt), d2.arrivals(dt))
		assert.Equal(t, d1.departures(busy, dt), d2.departures(busy, dt))
	}
}

func TestDriver_DeparturesOnlyFromBusyServers(t *testing.T) {
	d, err := New(Config{ServiceRate: 1e9, Tick: time.Second}, NewClient("http://localhost", time.Second), newFakeClock(), testLogger())
	require.NoError(t, err)

	// a huge service rate completes every busy server within the tick
	assert.Equal(t, []int{0, 2}, d.departures([]bool{true, false, true}, 1.0/60))

	d.cfg.ServiceRate = 0
	assert.Empty(t, d.departures([]bool{true, true}, 1.0/60))
}

func TestDriver_ZeroArrivalRate(t *testing.T) {
	d, err := New(Config{Tick: time.Second}, NewClient("http://localhost", time.Second), newFakeClock(), testLogger())
	require.NoError(t, err)
	assert.Zero(t, d.arrivals(1))
}

func TestDriver_InitializeAndArrivals(t *testing.T) {
	ts, st := newQueueServer(t)
	clk := newFakeClock()
	cfg := Config{Servers: 2, ArrivalRate: 600, Tick: time.Second, Seed: 7}
	d, err := New(cfg, NewClient(ts.URL, time.Second), clk, testLogger())
	require.NoError(t, err)

	// a twin with the same seed predicts the first draw
	twin, err := New(cfg, NewClient(ts.URL, time.Second), newFakeClock(), testLogger())
	require.NoError(t, err)
	expected := twin.arrivals(cfg.Tick.Minutes())

	d.Start(context.Background())
	defer d.Stop()

	first := collect(t, d.Results(), 1)
	require.Len(t, first, 1)
	assert.Equal(t, ActionInitialize, first[0].Action)
	require.NoError(t, first[0].Err)

	clk.Step(time.Second)

	results := collect(t, d.Results(), expected)
	for _, r := range results {
		assert.Equal(t, ActionArrival, r.Action)
		assert.NoError(t, r.Err)
	}

	status := st.Status()
	inSystem := len(status.Queue)
	for _, s := range status.Servers {
		if s.ID != nil {
			inSystem++
		}
	}
	assert.Equal(t, expected, inSystem)
}

func TestDriver_DepartsBusyServers(t *testing.T) {
	ts, st := newQueueServer(t)
	require.NoError(t, st.Initialize(3))
	st.Arrive()
	st.Arrive()

	clk := newFakeClock()
	d, err := New(Config{ServiceRate: 1e9, Tick: time.Second, MaxConcurrency: 2}, NewClient(ts.URL, time.Second), clk, testLogger())
	require.NoError(t, err)

	d.Start(context.Background())
	defer d.Stop()

	clk.Step(time.Second)
	results := collect(t, d.Results(), 2)

	served := map[int]bool{}
	for _, r := range results {
		assert.Equal(t, ActionDeparture, r.Action)
		assert.NoError(t, r.Err)
		served[r.ServerIndex] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true}, served)
	assert.Equal(t, 2, st.Status().Completed)
}

func TestDriver_DurationStopsRun(t *testing.T) {
	ts, st := newQueueServer(t)
	require.NoError(t, st.Initialize(1))

	clk := newFakeClock()
	d, err := New(Config{Tick: time.Second, Duration: 3 * time.Second, StopAtEnd: true}, NewClient(ts.URL, time.Second), clk, testLogger())
	require.NoError(t, err)

	d.Start(context.Background())
	defer d.Stop()

	clk.Step(3 * time.Second)
	results := collect(t, d.Results(), 10)

	require.NotEmpty(t, results)
	assert.Equal(t, ActionStop, results[len(results)-1].Action)
	assert.False(t, st.Status().IsRunning)
}

func TestDriver_InitializeFailureEndsDrive(t *testing.T) {
	// nothing listens on port 1
	bad, err := New(Config{Servers: 1, Tick: time.Second}, NewClient("http://127.0.0.1:1", 100*time.Millisecond), newFakeClock(), testLogger())
	require.NoError(t, err)
	bad.Start(context.Background())
	defer bad.Stop()

	results := collect(t, bad.Results(), 2)
	require.Len(t, results, 1)
	assert.Equal(t, ActionInitialize, results[0].Action)
	assert.Error(t, results[0].Err)
}

func TestDriver_StopIdempotent(t *testing.T) {
	d, err := New(Config{Tick: time.Second}, NewClient("http://localhost", time.Second), newFakeClock(), testLogger())
	require.NoError(t, err)

	// stop before start is a no-op and closes results
	d.Stop()
	d.Stop()
	d.Start(context.Background())

	_, ok := <-d.Results()
	assert.False(t, ok)
}

func TestDriver_ContextCancelCloses(t *testing.T) {
	d, err := New(Config{Tick: time.Second}, NewClient("http://localhost", time.Second), newFakeClock(), testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	select {
	case _, ok := <-d.Results():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("results channel not closed after cancellation")
	}
	d.Stop()
}
