// Package feed keeps a dashboard's views in sync with the playbook backend.
//
// A dashboard polls three independent feeds (playbook metadata, steps and logs).
// Each feed owns its state and a Gate that drops refreshes while one is in flight.
// A Scheduler drives periodic refresh cycles and a Session ties the feeds to the
// lifetime of one mounted view.
package feed

import "sync/atomic"

// Gate allows at most one in-flight fetch per feed.
// A refresh that finds the gate closed is dropped, not queued.
type Gate struct {
	inFlight atomic.Bool
}

// Acquire marks the gate in flight and returns true if it was idle.
func (g *Gate) Acquire() bool {
	return g.inFlight.CompareAndSwap(false, true)
}

// Release clears the in-flight mark. It is safe to call on an idle gate.
func (g *Gate) Release() {
	g.inFlight.Store(false)
}

// InFlight reports whether a fetch currently holds the gate.
func (g *Gate) InFlight() bool {
	return g.inFlight.Load()
}
