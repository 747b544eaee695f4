// Package engine implements the multi-server queue state machine and the
// queueing-theory metrics derived from it.
//
// An [Engine] moves through three states: uninitialized, running and
// stopped. Customers arrive with [Engine.HandleArrival], leave a server
// slot with [Engine.HandleDeparture], and the run ends with
// [Engine.HandleStop]. Time is read from the injected clock only when
// [Engine.RefreshTime] is called; nothing advances in the background.
//
// Engine is not safe for concurrent use. Callers must serialize access,
// see the store package for the mutex-guarded holder used by the server.
package engine
