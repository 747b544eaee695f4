// Package store holds the live queue engine and fans out its state changes.
//
// The engine package is not safe for concurrent use. [MemoryStore] owns a
// single engine behind a mutex so that HTTP handlers can call into it from
// many goroutines, one operation at a time. Every operation refreshes the
// engine clock before reading or mutating.
//
// Mutations publish an [Update] to subscribers via buffered channels with
// non-blocking sends (slow subscribers miss updates rather than block the
// engine). The server streams these updates as Server-Sent Events.
//
// [MemoryStore.Reset] replaces the engine wholesale with a fresh,
// uninitialized one; there is no ambient global engine.
package store
