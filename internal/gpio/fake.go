package gpio

import "sync"

// FakeOutput is a test double that records every SetOutput call.
// It may be driven from an edge goroutine while a test reads it.
type FakeOutput struct {
	mu     sync.Mutex
	states []bool
	closed bool
}

// NewFakeOutput creates an empty FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetOutput records the requested state.
func (f *FakeOutput) SetOutput(on bool) {
	f.mu.Lock()
	f.states = append(f.states, on)
	f.mu.Unlock()
}

// States returns a copy of all recorded states, oldest first.
func (f *FakeOutput) States() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.states))
	copy(out, f.states)
	return out
}

// On reports the most recent state (false if never set).
func (f *FakeOutput) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return false
	}
	return f.states[len(f.states)-1]
}

// CountOn returns how many recorded calls energized the output.
func (f *FakeOutput) CountOn() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.states {
		if s {
			n++
		}
	}
	return n
}

// Close marks the output as closed and de-energized.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.states = append(f.states, false)
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Reset clears recorded states.
func (f *FakeOutput) Reset() {
	f.mu.Lock()
	f.states = nil
	f.closed = false
	f.mu.Unlock()
}
