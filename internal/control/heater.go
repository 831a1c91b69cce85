package control

// Default MV limits, in percent.
const (
	DefaultMvMin = 0
	DefaultMvMax = 100
)

// Heater applies output-range policy on top of a CycleGate. The MV is the
// number of half-cycles per window to energize, which equals percent when
// the window is 100.
//
// Heater is owned by the control loop; only the gate's duty target is
// shared with the edge handler.
type Heater struct {
	gate   *CycleGate
	mvMin  int
	mvMax  int
	target int
}

// NewHeater wraps gate with the default 0..100 MV limits.
func NewHeater(gate *CycleGate) *Heater {
	return &Heater{gate: gate, mvMin: DefaultMvMin, mvMax: DefaultMvMax}
}

// SetMvLimits sets the MV output range. min must not exceed max.
// The current target is left as is until the next SetTargetMv.
func (h *Heater) SetMvLimits(min, max int) {
	h.mvMin = min
	h.mvMax = max
}

// MvLimits returns the MV output range.
func (h *Heater) MvLimits() (min, max int) {
	return h.mvMin, h.mvMax
}

// SetTargetMv clamps pct to the MV limits, then to the gate window, and
// hands the result to the gate.
func (h *Heater) SetTargetMv(pct int) {
	if pct > h.mvMax {
		pct = h.mvMax
	} else if pct < h.mvMin {
		pct = h.mvMin
	}

	if w := h.gate.WindowSize(); pct > w {
		pct = w
	} else if pct < 0 {
		pct = 0
	}

	h.target = pct
	h.gate.SetDutyTarget(pct)
}

// TargetMv returns the last accepted target.
func (h *Heater) TargetMv() int {
	return h.target
}

// CurrentMv returns the duty target the gate is currently applying. It is
// not a measurement of delivered power.
func (h *Heater) CurrentMv() int {
	return h.gate.DutyTarget()
}

// Off sets the duty target to zero regardless of the MV floor. Used on
// shutdown.
func (h *Heater) Off() {
	h.target = 0
	h.gate.SetDutyTarget(0)
}
