// Package logic contains the heater regulation loop logic.
// This package has NO external I/O (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Saturation reports whether the PID output exceeded the MV limits.
type Saturation string

const (
	SaturationNone Saturation = ""
	SaturationHigh Saturation = "HIGH"
	SaturationLow  Saturation = "LOW"
)

// Input represents a single measurement sample.
type Input struct {
	Measurement float32
	Time        time.Time
}

// Reading is the result of one regulation step.
type Reading struct {
	Timestamp   time.Time
	Setpoint    float32
	Measurement float32
	Error       float32

	// MV is the raw PID output before clamping.
	MV         float32
	Saturation Saturation
	TargetMv   int
	CurrentMv  int

	P, I, D  float32
	Integral float32

	Average  float32
	Variance float32
	StdDev   float32
	// Warm is set once the stats window has been filled.
	Warm bool
}

// SampleCounts tracks regulation steps since startup.
type SampleCounts struct {
	Samples       int
	SaturatedHigh int
	SaturatedLow  int
}

// TelemetryData contains information for a periodic telemetry event.
type TelemetryData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    SampleCounts
	Reading   Reading
}
