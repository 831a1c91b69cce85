package mqtt

import (
	"github.com/sweeney/heater-controller/internal/logic"
)

// FakePublisher records published heater readings and system events for
// test assertions.
type FakePublisher struct {
	// Readings contains all readings that were published.
	Readings []logic.Reading

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the reading.
func (f *FakePublisher) Publish(r logic.Reading) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Readings = append(f.Readings, r)

	payload, err := FormatPayload(r)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// LastReading returns the most recently published reading.
func (f *FakePublisher) LastReading() (logic.Reading, bool) {
	if len(f.Readings) == 0 {
		return logic.Reading{}, false
	}
	return f.Readings[len(f.Readings)-1], true
}

// MVs returns the manipulated value of every published reading, in order.
func (f *FakePublisher) MVs() []float32 {
	out := make([]float32, len(f.Readings))
	for i, r := range f.Readings {
		out[i] = r.MV
	}
	return out
}

// SaturationCount counts published readings with the given saturation state.
func (f *FakePublisher) SaturationCount(sat logic.Saturation) int {
	n := 0
	for _, r := range f.Readings {
		if r.Saturation == sat {
			n++
		}
	}
	return n
}

// EventCount counts recorded system events named event.
func (f *FakePublisher) EventCount(event string) int {
	n := 0
	for _, se := range f.SystemEvents {
		if se.Event == event {
			n++
		}
	}
	return n
}

// Reset clears recorded readings and events.
func (f *FakePublisher) Reset() {
	f.Readings = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
