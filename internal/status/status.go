// Package status provides a thread-safe status tracker for the heater-controller daemon.
// It is written by the sampling loop and read by HTTP handlers and MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/heater-controller/internal/logic"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	SamplePeriodMs int64
	TelemetryMs    int64
	WindowSize     int
	MvMin          int
	MvMax          int
	Kp, Ki, Kd     float32
	Broker         string
	HTTPPort       string
	WSBroker       string // Websocket broker URL for browser MQTT (empty = disabled)
	Simulated      bool
}

// GateInfo is the cycle gate and zero-cross position at the last update.
type GateInfo struct {
	CyclesRemaining int
	DutyTarget      int
	Edges           uint64
	OutputErrors    uint64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Reading       logic.Reading
	Counts        logic.SampleCounts
	Gate          GateInfo
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Ready reports whether at least one regulation step has run.
func (s Snapshot) Ready() bool {
	return s.Counts.Samples > 0
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the latest reading and sample counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(r logic.Reading, counts logic.SampleCounts) {
	t.mu.Lock()
	t.snap.Reading = r
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetGate sets the gate position and edge counters.
func (t *Tracker) SetGate(g GateInfo) {
	t.mu.Lock()
	t.snap.Gate = g
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
