package dom

import "sync/atomic"

// Guard marks a span of self-inflicted mutations so observers can ignore
// them. Spans nest.
type Guard struct {
	depth atomic.Int32
}

// Run executes fn with the guard held.
func (g *Guard) Run(fn func()) {
	g.depth.Add(1)
	defer g.depth.Add(-1)
	fn()
}

// Active reports whether a guarded span is in progress.
func (g *Guard) Active() bool {
	return g.depth.Load() > 0
}
