// Package sim provides a simulated mains zero-cross source and a thermal
// plant so the controller can run without hardware.
package sim

import (
	"context"
	"time"

	"github.com/sweeney/heater-controller/internal/control"
)

// Mains emits zero-cross edges of alternating polarity, two per mains cycle.
type Mains struct {
	hz       float64
	handler  control.EdgeHandler
	boundary bool
}

// NewMains creates a mains source at hz (typically 50 or 60) feeding handler.
func NewMains(hz float64, handler control.EdgeHandler) *Mains {
	return &Mains{hz: hz, handler: handler}
}

// Period returns the time between edges.
func (m *Mains) Period() time.Duration {
	return time.Duration(float64(time.Second) / (2 * m.hz))
}

// Edge emits a single edge. The first edge is an end-of-half-cycle edge.
func (m *Mains) Edge() {
	m.boundary = !m.boundary
	m.handler(m.boundary)
}

// Run emits edges every Period until ctx is cancelled. Edges are delivered
// from the calling goroutine only.
func (m *Mains) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Edge()
		}
	}
}
