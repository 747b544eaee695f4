package engine

import "math"

// Metrics holds M/M/c-style point estimates computed over the completed
// customers of a run. Rates are per minute, times are in minutes, and every
// value is rounded to 2 decimal places.
type Metrics struct {
	ArrivalRate       float64 `json:"arrivalRate"`
	ServiceRate       float64 `json:"serviceRate"`
	Utilization       float64 `json:"utilization"`
	AvgQueueLength    float64 `json:"avgQueueLength"`
	AvgWaitTime       float64 `json:"avgWaitTime"`
	AvgNumberInSystem float64 `json:"avgNumberInSystem"`
	AvgTimeInSystem   float64 `json:"avgTimeInSystem"`
	IdlePercent       float64 `json:"idlePercent"`
	EfficiencyPercent float64 `json:"efficiencyPercent"`
}

// Metric is one labelled row of [Metrics.Table].
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Table returns the metrics as labelled rows in presentation order.
func (m Metrics) Table() []Metric {
	return []Metric{
		{"λ (arrival rate)", m.ArrivalRate},
		{"μ (service rate)", m.ServiceRate},
		{"ρ (utilization)", m.Utilization},
		{"Lq (avg queue length)", m.AvgQueueLength},
		{"Wq (avg wait time in queue)", m.AvgWaitTime},
		{"L (avg number in system)", m.AvgNumberInSystem},
		{"W (avg time in system)", m.AvgTimeInSystem},
		{"Idle time (%)", m.IdlePercent},
		{"Efficiency (%)", m.EfficiencyPercent},
	}
}

// CalculateQueueMetrics computes [Metrics] using the current time as the
// observation window. It does not refresh the clock.
//
// With no completed customers or an empty window every field is zero,
// Idle time included.
func (e *Engine) CalculateQueueMetrics() Metrics {
	window := float64(e.currentTime)
	windowMinutes := window / 60
	n := float64(len(e.completed))
	if n == 0 || window == 0 {
		return Metrics{}
	}

	var service, wait, system float64
	for _, c := range e.completed {
		service += float64(c.ServiceTime())
		wait += float64(c.WaitingTime())
		system += float64(c.TotalTime())
	}

	lambda := n / windowMinutes
	lq := wait / window
	l := system / window
	wq := wait / n / 60
	w := system / n / 60

	var mu, rho float64
	if service > 0 {
		mu = n / (service / 60)
		rho = lambda / (float64(e.numServers) * mu)
	}

	return Metrics{
		ArrivalRate:       round2(lambda),
		ServiceRate:       round2(mu),
		Utilization:       round2(rho),
		AvgQueueLength:    round2(lq),
		AvgWaitTime:       round2(wq),
		AvgNumberInSystem: round2(l),
		AvgTimeInSystem:   round2(w),
		IdlePercent:       round2((1 - rho) * 100),
		EfficiencyPercent: round2(rho * 100),
	}
}

// CustomerSummary is the per-customer reporting row, times in seconds.
type CustomerSummary struct {
	ID          string `json:"id"`
	ArrivalTime int64  `json:"arrivalTime"`
	WaitingTime int64  `json:"waitingTime"`
	ServiceTime int64  `json:"serviceTime"`
	TotalTime   int64  `json:"totalTime"`
}

// CustomerSummaries returns one row per completed customer in departure order.
func (e *Engine) CustomerSummaries() []CustomerSummary {
	rows := make([]CustomerSummary, len(e.completed))
	for i, c := range e.completed {
		rows[i] = CustomerSummary{
			ID:          c.ID,
			ArrivalTime: c.ArrivalTime,
			WaitingTime: c.WaitingTime(),
			ServiceTime: c.ServiceTime(),
			TotalTime:   c.TotalTime(),
		}
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
