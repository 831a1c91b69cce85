package control

import "github.com/chewxy/math32"

// PIDConfig holds the tuning constants and integral limits of a PID.
type PIDConfig struct {
	Kp, Ki, Kd  float32
	IntegralMin float32
	IntegralMax float32
}

// PID is a single-step PID control law. The integral is clamped to
// [IntegralMin, IntegralMax] and the derivative is taken on the measurement
// rather than the error, so setpoint changes do not kick the output.
//
// The law is not time-normalized: Update must be called at a fixed sample
// period for the gains to have meaning. Not safe for concurrent use.
type PID struct {
	kp, ki, kd float32

	integral    float32
	integralMin float32
	integralMax float32

	prevMeasurement float32

	// last computed terms, kept for telemetry
	p, i, d float32
}

// NewPID creates a PID from cfg. IntegralMin must not exceed IntegralMax.
func NewPID(cfg PIDConfig) *PID {
	return &PID{
		kp:          cfg.Kp,
		ki:          cfg.Ki,
		kd:          cfg.Kd,
		integralMin: cfg.IntegralMin,
		integralMax: cfg.IntegralMax,
	}
}

// Update advances the controller by one sample and returns the manipulated
// value. The result is not clamped; output limits are the caller's concern.
func (c *PID) Update(err, measurement float32) float32 {
	c.p = c.kp * err

	c.integral = math32.Min(math32.Max(c.integral+err, c.integralMin), c.integralMax)
	c.i = c.ki * c.integral

	c.d = c.kd * (measurement - c.prevMeasurement)
	c.prevMeasurement = measurement

	return c.p + c.i - c.d
}

// SetGains replaces the tuning constants. Accumulated state is kept.
func (c *PID) SetGains(kp, ki, kd float32) {
	c.kp, c.ki, c.kd = kp, ki, kd
}

// SetIntegralLimits replaces the anti-windup limits and re-clamps the
// accumulator into them.
func (c *PID) SetIntegralLimits(min, max float32) {
	c.integralMin, c.integralMax = min, max
	c.integral = math32.Min(math32.Max(c.integral, min), max)
}

// Reset clears the integral and seeds the previous measurement so the next
// Update does not see a derivative step.
func (c *PID) Reset(measurement float32) {
	c.integral = 0
	c.prevMeasurement = measurement
	c.p, c.i, c.d = 0, 0, 0
}

// Integral returns the clamped integral accumulator.
func (c *PID) Integral() float32 {
	return c.integral
}

// Terms returns the proportional, integral and derivative terms of the last
// Update. The output was p + i - d.
func (c *PID) Terms() (p, i, d float32) {
	return c.p, c.i, c.d
}
