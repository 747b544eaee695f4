// Package driver generates synthetic traffic against a running QueueBoard
// server through its HTTP API.
//
// [Client] wraps the control and read endpoints. [Driver] ticks at a fixed
// interval; on every tick it draws a Poisson number of arrivals and, for
// each busy server, departs the occupant with the probability that an
// exponential service completes within the tick. The server remains the
// only owner of simulation time.
package driver
