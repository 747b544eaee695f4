// Package queueboard runs a live multi-server queue simulation behind an
// HTTP dashboard.
//
// Customers arrive, wait in a single FIFO queue, are served by one of a
// fixed number of servers and leave. Every action comes from a client
// (the dashboard, the load driver, or any HTTP caller); time is read from
// the wall clock whenever state is read or changed. Summary statistics
// are standard M/M/c point estimates over the completed customers.
//
// # Quick Start
//
//	qb, _ := queueboard.New(queueboard.WithServers(3))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	qb.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// QueueBoard uses the functional options pattern for configuration:
//
//	qb, err := queueboard.New(
//	    queueboard.WithPort(9090),
//	    queueboard.WithTitle("Branch 12"),
//	    queueboard.WithLogger(logrus.New()),
//	    queueboard.WithEventCallback(func(e queueboard.Event) {
//	        fmt.Println(e.Action, e.Queue)
//	    }),
//	)
//
// # HTTP API
//
//   - POST /api/initialize {"numServers": n}, /api/enter, /api/leave {"serverIndex": i}, /api/stop, /api/reset
//   - GET /api/status, /api/summary, /api/sse
//   - GET /api/download/customers, /api/download/metrics (CSV)
//
// # Architecture
//
//   - internal/engine: Queue state machine and metrics
//   - internal/store: Mutex-guarded engine holder with pub/sub
//   - internal/server: HTTP API, Server-Sent Events and dashboard
//   - internal/report: CSV rendering
//   - internal/driver: Synthetic traffic generator used by the CLI
//   - dashboard: Embedded web UI assets
package queueboard
