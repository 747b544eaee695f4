package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateQueueMetrics_Empty(t *testing.T) {
	e := New(nil)
	m := e.CalculateQueueMetrics()

	assert.Zero(t, m.ArrivalRate)
	assert.Zero(t, m.ServiceRate)
	assert.Zero(t, m.Utilization)
	assert.Zero(t, m.AvgQueueLength)
	assert.Zero(t, m.AvgWaitTime)
	assert.Zero(t, m.AvgNumberInSystem)
	assert.Zero(t, m.AvgTimeInSystem)
	assert.Zero(t, m.EfficiencyPercent)
	assert.Zero(t, m.IdlePercent)
}

func TestCalculateQueueMetrics_ZeroWindow(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	e.HandleArrival()
	require.NoError(t, e.HandleDeparture(0))

	// one completion, no elapsed time and no service time
	m := e.CalculateQueueMetrics()
	assert.Zero(t, m.ArrivalRate)
	assert.Zero(t, m.ServiceRate)
	assert.Zero(t, m.Utilization)
	assert.Zero(t, m.AvgQueueLength)
	assert.Zero(t, m.AvgNumberInSystem)
	assert.Zero(t, m.AvgWaitTime)
	assert.Zero(t, m.AvgTimeInSystem)
	assert.Equal(t, Metrics{}, m)
}

func TestCalculateQueueMetrics_InstantService(t *testing.T) {
	e, clk := newTestEngine(t, 1)
	e.HandleArrival()
	require.NoError(t, e.HandleDeparture(0))
	clk.Step(30 * time.Second)
	e.RefreshTime()

	// completed but never observed at a server for a full second
	m := e.CalculateQueueMetrics()
	assert.Equal(t, 2.0, m.ArrivalRate)
	assert.Zero(t, m.ServiceRate)
	assert.Zero(t, m.Utilization)
	assert.Equal(t, 100.0, m.IdlePercent)
	assert.Zero(t, m.EfficiencyPercent)
}

func TestCalculateQueueMetrics_SaturatedServer(t *testing.T) {
	e, clk := newTestEngine(t, 1)
	e.HandleArrival()
	e.HandleArrival()
	clk.Step(60 * time.Second)
	require.NoError(t, e.HandleDeparture(0))
	clk.Step(60 * time.Second)
	require.NoError(t, e.HandleDeparture(0))

	m := e.CalculateQueueMetrics()

	assert.Equal(t, Metrics{
		ArrivalRate:       1,
		ServiceRate:       1,
		Utilization:       1,
		AvgQueueLength:    0.5,
		AvgWaitTime:       0.5,
		AvgNumberInSystem: 1.5,
		AvgTimeInSystem:   1.5,
		IdlePercent:       0,
		EfficiencyPercent: 100,
	}, m)
}

func TestCalculateQueueMetrics_Rounding(t *testing.T) {
	e, clk := newTestEngine(t, 2)
	e.HandleArrival()
	clk.Step(30 * time.Second)
	require.NoError(t, e.HandleDeparture(0))
	clk.Step(60 * time.Second)
	e.RefreshTime()

	m := e.CalculateQueueMetrics()

	assert.Equal(t, 0.67, m.ArrivalRate)
	assert.Equal(t, 2.0, m.ServiceRate)
	assert.Equal(t, 0.17, m.Utilization)
	assert.Equal(t, 0.0, m.AvgQueueLength)
	assert.Equal(t, 0.33, m.AvgNumberInSystem)
	assert.Equal(t, 0.5, m.AvgTimeInSystem)
	assert.Equal(t, 83.33, m.IdlePercent)
	assert.Equal(t, 16.67, m.EfficiencyPercent)
}

func TestCalculateQueueMetrics_Idempotent(t *testing.T) {
	e, clk := newTestEngine(t, 2)
	for i := 0; i < 5; i++ {
		e.HandleArrival()
		clk.Step(7 * time.Second)
	}
	require.NoError(t, e.HandleDeparture(0))
	clk.Step(11 * time.Second)
	require.NoError(t, e.HandleDeparture(1))

	first := e.CalculateQueueMetrics()
	second := e.CalculateQueueMetrics()
	assert.Equal(t, first, second)

	// advancing the clock without a refresh changes nothing
	clk.Step(time.Minute)
	assert.Equal(t, first, e.CalculateQueueMetrics())
}

func TestMetrics_Table(t *testing.T) {
	m := Metrics{ArrivalRate: 1.25, EfficiencyPercent: 40, IdlePercent: 60}
	rows := m.Table()

	require.Len(t, rows, 9)
	assert.Equal(t, Metric{Name: "λ (arrival rate)", Value: 1.25}, rows[0])
	assert.Equal(t, "Wq (avg wait time in queue)", rows[4].Name)
	assert.Equal(t, Metric{Name: "Idle time (%)", Value: 60}, rows[7])
	assert.Equal(t, Metric{Name: "Efficiency (%)", Value: 40}, rows[8])
}

func TestCustomerSummaries(t *testing.T) {
	e, clk := newTestEngine(t, 1)
	e.HandleArrival()
	clk.Step(2 * time.Second)
	e.HandleArrival()
	clk.Step(3 * time.Second)
	require.NoError(t, e.HandleDeparture(0))

	rows := e.CustomerSummaries()
	require.Len(t, rows, 1)
	assert.Equal(t, CustomerSummary{ID: "C1", ArrivalTime: 0, WaitingTime: 0, ServiceTime: 5, TotalTime: 5}, rows[0])
}
