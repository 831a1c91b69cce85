package logic

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/sweeney/heater-controller/internal/control"
)

// Regulator closes the loop: measurement -> PID -> MV limits -> heater duty,
// while tracking the measurement statistics.
// Not safe for concurrent use; owned by the sampling loop.
type Regulator struct {
	pid    *control.PID
	heater *control.Heater
	stats  *control.RollingStats

	setpoint      float32
	startTime     time.Time
	counts        SampleCounts
	last          Reading
	lastTelemetry time.Time
}

// NewRegulator creates a regulator around the given core components.
// The startTime is used for calculating uptime in telemetry events.
func NewRegulator(pid *control.PID, heater *control.Heater, stats *control.RollingStats, setpoint float32, startTime time.Time) *Regulator {
	return &Regulator{
		pid:           pid,
		heater:        heater,
		stats:         stats,
		setpoint:      setpoint,
		startTime:     startTime,
		lastTelemetry: startTime,
	}
}

// SetSetpoint changes the regulation target. The PID state is kept; the
// derivative acts on the measurement so the change causes no kick.
func (r *Regulator) SetSetpoint(sp float32) {
	r.setpoint = sp
}

// Setpoint returns the regulation target.
func (r *Regulator) Setpoint() float32 {
	return r.setpoint
}

// Step runs one regulation step. It must be called at the fixed sample
// period the PID gains were tuned for.
func (r *Regulator) Step(in Input) Reading {
	err := r.setpoint - in.Measurement
	mv := r.pid.Update(err, in.Measurement)

	min, max := r.heater.MvLimits()
	lo, hi := float32(min), float32(max)
	clamped := math32.Min(math32.Max(mv, lo), hi)
	sat := SaturationNone
	switch {
	case math32.IsNaN(mv):
		clamped = lo
	case mv > hi:
		sat = SaturationHigh
		r.counts.SaturatedHigh++
	case mv < lo:
		sat = SaturationLow
		r.counts.SaturatedLow++
	}
	r.heater.SetTargetMv(int(clamped))

	r.stats.Update(in.Measurement)
	r.counts.Samples++

	p, i, d := r.pid.Terms()
	r.last = Reading{
		Timestamp:   in.Time,
		Setpoint:    r.setpoint,
		Measurement: in.Measurement,
		Error:       err,
		MV:          mv,
		Saturation:  sat,
		TargetMv:    r.heater.TargetMv(),
		CurrentMv:   r.heater.CurrentMv(),
		P:           p,
		I:           i,
		D:           d,
		Integral:    r.pid.Integral(),
		Average:     r.stats.Average(),
		Variance:    r.stats.Variance(),
		StdDev:      r.stats.StdDev(),
		Warm:        r.counts.Samples >= r.stats.WindowSize(),
	}
	return r.last
}

// Off de-energizes the heater. The next Step resumes regulation.
func (r *Regulator) Off() {
	r.heater.Off()
	r.last.TargetMv = 0
	r.last.CurrentMv = r.heater.CurrentMv()
}

// Last returns the most recent reading.
func (r *Regulator) Last() Reading {
	return r.last
}

// Counts returns a copy of the sample counters.
func (r *Regulator) Counts() SampleCounts {
	return r.counts
}

// CheckTelemetry returns telemetry data if the interval has elapsed since the
// last telemetry event (or startup). Returns nil before the first sample, if
// the interval has not elapsed, or if interval is <= 0 (disabled).
func (r *Regulator) CheckTelemetry(now time.Time, interval time.Duration) *TelemetryData {
	if interval <= 0 {
		return nil
	}

	if r.counts.Samples == 0 {
		return nil
	}

	if now.Sub(r.lastTelemetry) < interval {
		return nil
	}

	r.lastTelemetry = now
	return &TelemetryData{
		Timestamp: now,
		Uptime:    now.Sub(r.startTime),
		Counts:    r.counts,
		Reading:   r.last,
	}
}
