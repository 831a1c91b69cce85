// Package control contains the heater control algorithms: the zero-cross
// synchronized cycle gate, the PID update law and the rolling statistics
// estimator. It performs no I/O apart from driving an Output.
package control

import "sync/atomic"

// DefaultWindowSize is the number of half-cycles in one gate window.
const DefaultWindowSize = 100

// Output drives the heater output. Implementations are called from the
// edge handler and must be fast and idempotent.
type Output interface {
	SetOutput(on bool)
}

// EdgeHandler is invoked by a zero-cross edge source once per detected edge.
type EdgeHandler func(endOfHalfCycle bool)

// CycleGate implements burst-fire (cycle-skipping) power control. Within a
// window of windowSize half-cycles, the output is energized while the
// remaining-cycle counter is below the duty target.
//
// OnZeroCrossEdge runs on the edge source's goroutine and SetDutyTarget on
// the control loop's goroutine. Both shared words are atomics, so neither
// side takes a lock. OnZeroCrossEdge itself must not be called concurrently
// with itself.
type CycleGate struct {
	window uint32
	cycles atomic.Uint32 // half-cycles remaining in the current window
	duty   atomic.Uint32 // half-cycles to energize per window
	out    Output
}

// NewCycleGate creates a gate with the given window size driving out.
// The first boundary edge starts a fresh window.
func NewCycleGate(windowSize uint32, out Output) *CycleGate {
	return &CycleGate{window: windowSize, out: out}
}

// WindowSize returns the number of half-cycles per window.
func (g *CycleGate) WindowSize() int {
	return int(g.window)
}

// SetDutyTarget sets the number of half-cycles to energize per window,
// clamped to [0, WindowSize]. It takes effect on subsequent edges.
func (g *CycleGate) SetDutyTarget(target int) {
	switch {
	case target < 0:
		target = 0
	case target > int(g.window):
		target = int(g.window)
	}
	g.duty.Store(uint32(target))
}

// DutyTarget returns the last accepted (clamped) duty target.
func (g *CycleGate) DutyTarget() int {
	return int(g.duty.Load())
}

// CyclesRemaining returns the current window position.
func (g *CycleGate) CyclesRemaining() int {
	return int(g.cycles.Load())
}

// OnZeroCrossEdge decides the output for the upcoming half-cycle, drives it,
// and advances the window on end-of-half-cycle edges.
func (g *CycleGate) OnZeroCrossEdge(endOfHalfCycle bool) {
	cur := g.cycles.Load()
	last := cur == 0

	// Never leave the output asserted across the window boundary.
	on := cur < g.duty.Load() && !(last && endOfHalfCycle)
	g.out.SetOutput(on)

	if !endOfHalfCycle {
		return
	}
	if last || cur > g.window {
		cur = g.window
	}
	g.cycles.Store(cur - 1)
}
