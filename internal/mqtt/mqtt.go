// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/heater-controller/internal/logic"
)

// Topic is the MQTT topic for heater telemetry.
const Topic = "energy/heater/controller/telemetry"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "energy/heater/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a regulation reading to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(reading logic.Reading) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT telemetry payload structure.
type Payload struct {
	Heater HeaterPayload `json:"heater"`
}

// HeaterPayload contains one regulation reading.
type HeaterPayload struct {
	Timestamp   string       `json:"timestamp"`
	Setpoint    float32      `json:"setpoint"`
	Measurement float32      `json:"measurement"`
	Error       float32      `json:"error"`
	MV          float32      `json:"mv"`
	Saturation  string       `json:"saturation,omitempty"`
	TargetMv    int          `json:"target_mv"`
	CurrentMv   int          `json:"current_mv"`
	PID         PIDPayload   `json:"pid"`
	Stats       StatsPayload `json:"stats"`
}

// PIDPayload contains the PID terms of a reading.
type PIDPayload struct {
	P        float32 `json:"p"`
	I        float32 `json:"i"`
	D        float32 `json:"d"`
	Integral float32 `json:"integral"`
}

// StatsPayload contains the rolling measurement statistics.
type StatsPayload struct {
	Average  float32 `json:"average"`
	Variance float32 `json:"variance"`
	StdDev   float32 `json:"stddev"`
	Warm     bool    `json:"warm"`
}

// FormatPayload creates the JSON payload for a reading.
func FormatPayload(r logic.Reading) ([]byte, error) {
	payload := Payload{
		Heater: HeaterPayload{
			Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
			Setpoint:    r.Setpoint,
			Measurement: r.Measurement,
			Error:       r.Error,
			MV:          r.MV,
			Saturation:  string(r.Saturation),
			TargetMv:    r.TargetMv,
			CurrentMv:   r.CurrentMv,
			PID: PIDPayload{
				P:        r.P,
				I:        r.I,
				D:        r.D,
				Integral: r.Integral,
			},
			Stats: StatsPayload{
				Average:  r.Average,
				Variance: r.Variance,
				StdDev:   r.StdDev,
				Warm:     r.Warm,
			},
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// FormatWillPayload creates the last-will payload registered at connect time.
// The broker publishes it if the daemon disappears without a clean shutdown.
func FormatWillPayload(connectedAt time.Time) ([]byte, error) {
	return FormatSystemPayload(SystemEvent{
		Timestamp: connectedAt,
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
}
