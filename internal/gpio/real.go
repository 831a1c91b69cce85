//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/heater-controller/internal/control"
)

// RealOutput drives the heater output using Linux GPIO character device.
type RealOutput struct {
	line *gpiocdev.Line
	errs atomic.Uint64
}

// NewRealOutput requests pin on chip as an output, initially low.
func NewRealOutput(chip string, pin int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line}, nil
}

// SetOutput writes the line. It is called from the edge handler, so write
// failures are counted rather than returned.
func (o *RealOutput) SetOutput(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		o.errs.Add(1)
	}
}

// Errors returns the number of failed writes since open.
func (o *RealOutput) Errors() uint64 {
	return o.errs.Load()
}

// Close drives the output low, then reconfigures the pin to input with
// pull-down (matching Pi boot defaults) so the SSR stays off while the
// process is gone.
func (o *RealOutput) Close() error {
	if o.line == nil {
		return nil
	}

	var errs []error
	if err := o.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("drive output low: %w", err))
	}
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure output pin: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output pin: %w", err))
	}
	o.line = nil

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealZeroCross watches the zero-cross detector input and invokes the edge
// handler from the gpiocdev event goroutine, one event at a time.
type RealZeroCross struct {
	line  *gpiocdev.Line
	edges atomic.Uint64
}

// NewRealZeroCross requests pin on chip as an input with pull-up and both
// edges enabled. A rising edge marks the end of a half-cycle; activeLow
// inverts the line so a falling edge does instead.
func NewRealZeroCross(chip string, pin int, activeLow bool, handler control.EdgeHandler) (*RealZeroCross, error) {
	z := &RealZeroCross{}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithConsumer(consumer),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			z.edges.Add(1)
			handler(evt.Type == gpiocdev.LineEventRisingEdge)
		}),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(chip, pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request zero-cross pin %d: %w", pin, err)
	}
	z.line = line
	return z, nil
}

// Edges returns the number of edges seen since open.
func (z *RealZeroCross) Edges() uint64 {
	return z.edges.Load()
}

// Close stops edge delivery and releases the line.
func (z *RealZeroCross) Close() error {
	if z.line == nil {
		return nil
	}
	err := z.line.Close()
	z.line = nil
	if err != nil {
		return fmt.Errorf("close zero-cross pin: %w", err)
	}
	return nil
}
