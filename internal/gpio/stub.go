//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/heater-controller/internal/control"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chip string, pin int) (*RealOutput, error) {
	return nil, errUnsupported
}

// SetOutput does nothing on non-Linux platforms.
func (o *RealOutput) SetOutput(on bool) {}

// Errors always returns 0 on non-Linux platforms.
func (o *RealOutput) Errors() uint64 { return 0 }

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error { return nil }

// RealZeroCross is not available on non-Linux platforms.
type RealZeroCross struct{}

// NewRealZeroCross returns an error on non-Linux platforms.
func NewRealZeroCross(chip string, pin int, activeLow bool, handler control.EdgeHandler) (*RealZeroCross, error) {
	return nil, errUnsupported
}

// Edges always returns 0 on non-Linux platforms.
func (z *RealZeroCross) Edges() uint64 { return 0 }

// Close is not implemented on non-Linux platforms.
func (z *RealZeroCross) Close() error { return nil }
