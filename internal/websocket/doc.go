// Package websocket implements the emotion broadcaster using the actor pattern.
//
// The Broadcaster pulls the fused emotional state on a one second tick and fans
// out JSON updates to connected clients whenever the state changes. A single
// goroutine owns the client set (no mutexes); per-connection write goroutines
// keep slow clients from stalling the fan-out.
package websocket
