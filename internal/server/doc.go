// Package server provides the HTTP adapter around the queue store.
//
// This package is internal to QueueBoard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML dashboard at "/"
//   - Control API: POST endpoints that drive arrivals, departures and the run lifecycle
//   - Read API: live status and summary JSON, CSV downloads
//   - Server-Sent Events: Real-time updates at "/api/sse"
//
// Routing is done with gin. The server supports graceful shutdown via
// context cancellation, with a 5-second timeout for in-flight requests.
package server
