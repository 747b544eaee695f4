package driver

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/utils/clock"
)

// Action names the API call behind a [Result].
type Action string

const (
	ActionInitialize Action = "initialize"
	ActionArrival    Action = "arrival"
	ActionDeparture  Action = "departure"
	ActionStatus     Action = "status"
	ActionStop       Action = "stop"
)

// Config controls the traffic a [Driver] generates.
type Config struct {
	// ArrivalRate is the mean number of arrivals per minute.
	ArrivalRate float64

	// ServiceRate is the mean number of completions per minute per busy server.
	ServiceRate float64

	// Tick is the interval between traffic rounds.
	Tick time.Duration

	// Duration ends the drive after this long. Zero runs until cancelled.
	Duration time.Duration

	// Servers, when positive, initializes a new run before the first tick.
	Servers int

	// StopAtEnd stops the run on the server when Duration elapses.
	StopAtEnd bool

	// Seed makes the drawn traffic reproducible.
	Seed uint64

	// MaxConcurrency bounds concurrent departure requests within one tick.
	MaxConcurrency int
}

// Result is the outcome of one API call made by the driver.
type Result struct {
	Action      Action
	ServerIndex int // -1 unless Action is a departure
	Latency     time.Duration
	At          time.Time
	Err         error
}

// Driver issues arrivals and departures against a QueueBoard server.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Driver struct {
	cfg     Config
	client  *Client
	clock   clock.WithTicker
	logger  logrus.FieldLogger
	src     rand.Source
	results chan Result

	ticker clock.Ticker
	timer  clock.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// New creates a [Driver]. A nil clock uses the system clock and a nil
// logger uses the logrus standard logger.
func New(cfg Config, client *Client, clk clock.WithTicker, logger logrus.FieldLogger) (*Driver, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if cfg.Tick <= 0 {
		return nil, errors.New("tick must be positive")
	}
	if cfg.ArrivalRate < 0 || cfg.ServiceRate < 0 {
		return nil, errors.New("rates cannot be negative")
	}
	if cfg.Duration < 0 {
		return nil, errors.New("duration cannot be negative")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Driver{
		cfg:     cfg,
		client:  client,
		clock:   clk,
		logger:  logger,
		src:     rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15),
		results: make(chan Result, 64),
	}, nil
}

// Results returns the channel of call outcomes. It is closed when the
// driver finishes, either because Duration elapsed or it was stopped.
func (d *Driver) Results() <-chan Result {
	return d.results
}

// Start begins driving traffic in a background goroutine.
//
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	runCtx := d.ctx

	// clocks are armed before returning so the first tick is one full Tick away
	d.ticker = d.clock.NewTicker(d.cfg.Tick)
	var deadline <-chan time.Time
	if d.cfg.Duration > 0 {
		d.timer = d.clock.NewTimer(d.cfg.Duration)
		deadline = d.timer.C()
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer d.closeOnce.Do(func() { close(d.results) })
		defer d.ticker.Stop()
		if d.timer != nil {
			defer d.timer.Stop()
		}

		if d.cfg.Servers > 0 {
			res := d.call(runCtx, ActionInitialize, -1, func(ctx context.Context) error {
				return d.client.Initialize(ctx, d.cfg.Servers)
			})
			d.emit(runCtx, res)
			if res.Err != nil {
				d.logger.WithError(res.Err).Error("driver could not initialize the run")
				return
			}
		}

		for {
			select {
			case <-runCtx.Done():
				return
			case <-deadline:
				if d.cfg.StopAtEnd {
					d.emit(runCtx, d.call(runCtx, ActionStop, -1, d.client.Stop))
				}
				return
			case <-d.ticker.C():
				d.step(runCtx)
			}
		}
	}()
}

// Stop halts the driver and waits for in-flight requests to finish.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		if d.cancel != nil {
			d.cancel()
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.client.Close()

	// ensure channel is closed even if Start() was never called
	d.closeOnce.Do(func() { close(d.results) })
}

// step runs one traffic round: arrivals first, then departures from the
// servers that were busy after those arrivals.
func (d *Driver) step(ctx context.Context) {
	dt := d.cfg.Tick.Minutes()

	for i := d.arrivals(dt); i > 0; i-- {
		if ctx.Err() != nil {
			return
		}
		d.emit(ctx, d.call(ctx, ActionArrival, -1, d.client.Enter))
	}

	if d.cfg.ServiceRate == 0 {
		return
	}

	status, err := d.client.Status(ctx)
	if err != nil {
		d.emit(ctx, Result{Action: ActionStatus, ServerIndex: -1, At: d.clock.Now(), Err: err})
		return
	}
	if !status.IsRunning {
		return
	}

	busy := make([]bool, len(status.Servers))
	for i, slot := range status.Servers {
		busy[i] = slot.ID != nil
	}
	d.departAll(ctx, d.departures(busy, dt))
}

// arrivals draws the number of arrivals in a window of dt minutes.
func (d *Driver) arrivals(dt float64) int {
	lambda := d.cfg.ArrivalRate * dt
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: d.src}.Rand())
}

// departures picks the busy servers whose exponential service completes
// within dt minutes.
func (d *Driver) departures(busy []bool, dt float64) []int {
	p := 1 - math.Exp(-d.cfg.ServiceRate*dt)
	if p <= 0 {
		return nil
	}
	coin := distuv.Bernoulli{P: p, Src: d.src}

	var due []int
	for i, b := range busy {
		if b && coin.Rand() == 1 {
			due = append(due, i)
		}
	}
	return due
}

// departAll sends departures concurrently, respecting MaxConcurrency.
func (d *Driver) departAll(ctx context.Context, servers []int) {
	if len(servers) == 0 {
		return
	}
	jobs := make(chan int, len(servers))

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				d.emit(ctx, d.call(ctx, ActionDeparture, idx, func(ctx context.Context) error {
					return d.client.Leave(ctx, idx)
				}))
			}
		}()
	}

	for _, idx := range servers {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
}

func (d *Driver) call(ctx context.Context, action Action, server int, fn func(context.Context) error) Result {
	start := d.clock.Now()
	err := fn(ctx)
	return Result{
		Action:      action,
		ServerIndex: server,
		Latency:     d.clock.Since(start),
		At:          start,
		Err:         err,
	}
}

func (d *Driver) emit(ctx context.Context, r Result) {
	select {
	case d.results <- r:
	case <-ctx.Done():
	}
}
