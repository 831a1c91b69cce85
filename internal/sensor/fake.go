package sensor

import "errors"

// FakeSource is a test double that returns scripted measurements.
type FakeSource struct {
	// Values contains scripted measurements.
	// Each call to Read() consumes the next value.
	Values []float32

	// index tracks current position in Values
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given values.
func NewFakeSource(values ...float32) *FakeSource {
	return &FakeSource{Values: values}
}

// Read returns the next scripted value.
// If values are exhausted, returns the last value repeatedly.
func (f *FakeSource) Read() (float32, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Values) == 0 {
		return 0, errors.New("no values configured")
	}

	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the source to the beginning of values.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Closed = false
}
