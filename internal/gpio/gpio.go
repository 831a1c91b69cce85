// Package gpio provides the heater output line and the zero-cross input with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/heater-controller/internal/control"

// Output drives the heater (SSR/triac) output line.
type Output interface {
	control.Output

	// Close de-energizes the output and releases GPIO resources.
	Close() error
}

// ZeroCross delivers zero-cross detector edges to a control.EdgeHandler.
type ZeroCross interface {
	// Edges returns the number of edges seen since open.
	Edges() uint64

	// Close stops edge delivery and releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering) and chip.
const (
	DefaultChip         = "gpiochip0"
	DefaultPinOutput    = 17
	DefaultPinZeroCross = 27
	consumer            = "heater-controller"
)
