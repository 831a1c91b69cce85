package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Heater        HeaterJSON   `json:"heater"`
	Gate          GateJSON     `json:"gate"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"sample_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// HeaterJSON is the JSON representation of the latest reading.
type HeaterJSON struct {
	Setpoint    float32 `json:"setpoint"`
	Measurement float32 `json:"measurement"`
	Error       float32 `json:"error"`
	MV          float32 `json:"mv"`
	Saturation  string  `json:"saturation,omitempty"`
	TargetMv    int     `json:"target_mv"`
	CurrentMv   int     `json:"current_mv"`
	Integral    float32 `json:"integral"`
	Average     float32 `json:"average"`
	StdDev      float32 `json:"stddev"`
	Warm        bool    `json:"warm"`
}

// GateJSON is the JSON representation of the cycle gate.
type GateJSON struct {
	WindowSize      int    `json:"window_size"`
	CyclesRemaining int    `json:"cycles_remaining"`
	DutyTarget      int    `json:"duty_target"`
	Edges           uint64 `json:"zero_cross_edges"`
	OutputErrors    uint64 `json:"output_errors"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of sample counts.
type CountsJSON struct {
	Samples       int `json:"samples"`
	SaturatedHigh int `json:"saturated_high"`
	SaturatedLow  int `json:"saturated_low"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SamplePeriodMs int64   `json:"sample_period_ms"`
	TelemetryMs    int64   `json:"telemetry_ms"`
	MvMin          int     `json:"mv_min"`
	MvMax          int     `json:"mv_max"`
	Kp             float32 `json:"kp"`
	Ki             float32 `json:"ki"`
	Kd             float32 `json:"kd"`
	Broker         string  `json:"broker"`
	HTTPPort       string  `json:"http_port"`
	WSBroker       string  `json:"ws_broker,omitempty"`
	Simulated      bool    `json:"simulated"`
}

func buildInner(snap Snapshot) StatusInner {
	r := snap.Reading
	return StatusInner{
		Ready:         snap.Ready(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Heater: HeaterJSON{
			Setpoint:    r.Setpoint,
			Measurement: r.Measurement,
			Error:       r.Error,
			MV:          r.MV,
			Saturation:  string(r.Saturation),
			TargetMv:    r.TargetMv,
			CurrentMv:   r.CurrentMv,
			Integral:    r.Integral,
			Average:     r.Average,
			StdDev:      r.StdDev,
			Warm:        r.Warm,
		},
		Gate: GateJSON{
			WindowSize:      snap.Config.WindowSize,
			CyclesRemaining: snap.Gate.CyclesRemaining,
			DutyTarget:      snap.Gate.DutyTarget,
			Edges:           snap.Gate.Edges,
			OutputErrors:    snap.Gate.OutputErrors,
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Samples:       snap.Counts.Samples,
			SaturatedHigh: snap.Counts.SaturatedHigh,
			SaturatedLow:  snap.Counts.SaturatedLow,
		},
		Config: ConfigJSON{
			SamplePeriodMs: snap.Config.SamplePeriodMs,
			TelemetryMs:    snap.Config.TelemetryMs,
			MvMin:          snap.Config.MvMin,
			MvMax:          snap.Config.MvMax,
			Kp:             snap.Config.Kp,
			Ki:             snap.Config.Ki,
			Kd:             snap.Config.Kd,
			Broker:         snap.Config.Broker,
			HTTPPort:       snap.Config.HTTPPort,
			WSBroker:       snap.Config.WSBroker,
			Simulated:      snap.Config.Simulated,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
