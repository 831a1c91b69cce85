package logic

import (
	"testing"
	"time"

	"github.com/sweeney/heater-controller/internal/control"
)

type nopOutput struct{}

func (nopOutput) SetOutput(bool) {}

func newTestRegulator(t *testing.T, cfg control.PIDConfig, statsWindow int, setpoint float32) (*Regulator, *control.Heater) {
	t.Helper()
	gate := control.NewCycleGate(control.DefaultWindowSize, nopOutput{})
	heater := control.NewHeater(gate)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegulator(control.NewPID(cfg), heater, control.NewRollingStats(statsWindow), setpoint, start)
	return r, heater
}

func TestStepComputesErrorAndMv(t *testing.T) {
	r, heater := newTestRegulator(t, control.PIDConfig{Kp: 2, IntegralMin: -10, IntegralMax: 10}, 4, 50)
	now := time.Date(2026, 1, 1, 12, 0, 1, 0, time.UTC)

	rd := r.Step(Input{Measurement: 30, Time: now})

	if rd.Error != 20 {
		t.Errorf("Error: got %v, want 20", rd.Error)
	}
	if rd.MV != 40 {
		t.Errorf("MV: got %v, want 40", rd.MV)
	}
	if rd.TargetMv != 40 || rd.CurrentMv != 40 {
		t.Errorf("TargetMv/CurrentMv: got %d/%d, want 40/40", rd.TargetMv, rd.CurrentMv)
	}
	if heater.CurrentMv() != 40 {
		t.Errorf("heater CurrentMv: got %d, want 40", heater.CurrentMv())
	}
	if rd.Saturation != SaturationNone {
		t.Errorf("Saturation: got %q, want none", rd.Saturation)
	}
	if !rd.Timestamp.Equal(now) {
		t.Errorf("Timestamp: got %v, want %v", rd.Timestamp, now)
	}
	if rd.Setpoint != 50 || rd.Measurement != 30 {
		t.Errorf("Setpoint/Measurement: got %v/%v", rd.Setpoint, rd.Measurement)
	}
}

func TestStepClampsToMvLimits(t *testing.T) {
	r, heater := newTestRegulator(t, control.PIDConfig{Kp: 10, IntegralMin: -10, IntegralMax: 10}, 4, 100)
	heater.SetMvLimits(0, 50)

	rd := r.Step(Input{Measurement: 20, Time: time.Now()})
	if rd.MV != 800 {
		t.Errorf("raw MV: got %v, want 800", rd.MV)
	}
	if rd.TargetMv != 50 {
		t.Errorf("TargetMv: got %d, want 50", rd.TargetMv)
	}
	if rd.Saturation != SaturationHigh {
		t.Errorf("Saturation: got %q, want HIGH", rd.Saturation)
	}

	rd = r.Step(Input{Measurement: 200, Time: time.Now()})
	if rd.TargetMv != 0 {
		t.Errorf("TargetMv: got %d, want 0", rd.TargetMv)
	}
	if rd.Saturation != SaturationLow {
		t.Errorf("Saturation: got %q, want LOW", rd.Saturation)
	}

	c := r.Counts()
	if c.Samples != 2 || c.SaturatedHigh != 1 || c.SaturatedLow != 1 {
		t.Errorf("Counts: got %+v", c)
	}
}

func TestStepTruncatesFractionalMv(t *testing.T) {
	r, _ := newTestRegulator(t, control.PIDConfig{Kp: 1, IntegralMin: -10, IntegralMax: 10}, 4, 10)

	rd := r.Step(Input{Measurement: 2.6, Time: time.Now()})
	if rd.TargetMv != 7 {
		t.Errorf("TargetMv: got %d, want 7", rd.TargetMv)
	}
}

func TestStepTracksStatistics(t *testing.T) {
	r, _ := newTestRegulator(t, control.PIDConfig{IntegralMin: -1, IntegralMax: 1}, 3, 0)

	var rd Reading
	for i := 0; i < 2; i++ {
		rd = r.Step(Input{Measurement: 25, Time: time.Now()})
		if rd.Warm {
			t.Fatalf("sample %d: expected Warm=false before window fills", i)
		}
	}
	rd = r.Step(Input{Measurement: 25, Time: time.Now()})
	if !rd.Warm {
		t.Error("expected Warm=true once window is filled")
	}
	if rd.Average != 25 {
		t.Errorf("Average: got %v, want 25", rd.Average)
	}
	if rd.Variance != 0 || rd.StdDev != 0 {
		t.Errorf("Variance/StdDev: got %v/%v, want 0/0", rd.Variance, rd.StdDev)
	}
}

func TestSetSetpoint(t *testing.T) {
	r, _ := newTestRegulator(t, control.PIDConfig{Kp: 1, IntegralMin: -1, IntegralMax: 1}, 4, 10)
	r.SetSetpoint(60)
	if r.Setpoint() != 60 {
		t.Fatalf("Setpoint: got %v, want 60", r.Setpoint())
	}

	rd := r.Step(Input{Measurement: 40, Time: time.Now()})
	if rd.Error != 20 {
		t.Errorf("Error: got %v, want 20", rd.Error)
	}
}

func TestOffDeenergizes(t *testing.T) {
	r, heater := newTestRegulator(t, control.PIDConfig{Kp: 1, IntegralMin: -1, IntegralMax: 1}, 4, 80)
	heater.SetMvLimits(10, 100)
	r.Step(Input{Measurement: 20, Time: time.Now()})

	r.Off()
	if heater.CurrentMv() != 0 {
		t.Errorf("CurrentMv after Off: got %d, want 0", heater.CurrentMv())
	}
	if r.Last().CurrentMv != 0 || r.Last().TargetMv != 0 {
		t.Errorf("Last after Off: got %+v", r.Last())
	}
}

func TestCheckTelemetry(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r, _ := newTestRegulator(t, control.PIDConfig{Kp: 1, IntegralMin: -1, IntegralMax: 1}, 4, 50)

	if td := r.CheckTelemetry(start.Add(time.Hour), time.Minute); td != nil {
		t.Error("expected no telemetry before the first sample")
	}

	r.Step(Input{Measurement: 45, Time: start.Add(time.Second)})

	if td := r.CheckTelemetry(start.Add(30*time.Second), time.Minute); td != nil {
		t.Error("expected no telemetry before interval elapsed")
	}

	td := r.CheckTelemetry(start.Add(time.Minute), time.Minute)
	if td == nil {
		t.Fatal("expected telemetry after interval")
	}
	if td.Uptime != time.Minute {
		t.Errorf("Uptime: got %v, want 1m", td.Uptime)
	}
	if td.Counts.Samples != 1 {
		t.Errorf("Counts.Samples: got %d, want 1", td.Counts.Samples)
	}
	if td.Reading.Measurement != 45 {
		t.Errorf("Reading.Measurement: got %v, want 45", td.Reading.Measurement)
	}

	if td := r.CheckTelemetry(start.Add(90*time.Second), time.Minute); td != nil {
		t.Error("expected interval to restart after telemetry")
	}
	if td := r.CheckTelemetry(start.Add(2*time.Minute), 0); td != nil {
		t.Error("expected interval 0 to disable telemetry")
	}
}
