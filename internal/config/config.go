// Package config loads the heater controller configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/heater-controller/internal/control"
	"github.com/sweeney/heater-controller/internal/gpio"
	"github.com/sweeney/heater-controller/internal/sensor"
)

// Config represents the daemon configuration.
type Config struct {
	Heater  HeaterConfig  `yaml:"heater"`
	PID     PIDConfig     `yaml:"pid"`
	Control ControlConfig `yaml:"control"`
	Sensor  SensorConfig  `yaml:"sensor"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Sim     SimConfig     `yaml:"sim"`
}

// HeaterConfig contains the gate window, MV limits and GPIO wiring.
type HeaterConfig struct {
	WindowSize         uint32 `yaml:"window_size"`
	MvMin              int    `yaml:"mv_min"`
	MvMax              int    `yaml:"mv_max"`
	Chip               string `yaml:"chip"`
	OutputPin          int    `yaml:"output_pin"`
	ZeroCrossPin       int    `yaml:"zero_cross_pin"`
	ZeroCrossActiveLow bool   `yaml:"zero_cross_active_low"`
}

// PIDConfig contains the PID tuning.
type PIDConfig struct {
	Kp          float32 `yaml:"kp"`
	Ki          float32 `yaml:"ki"`
	Kd          float32 `yaml:"kd"`
	IntegralMin float32 `yaml:"integral_min"`
	IntegralMax float32 `yaml:"integral_max"`
}

// ControlConfig contains sampling loop parameters.
type ControlConfig struct {
	Setpoint     float32       `yaml:"setpoint"`
	SamplePeriod time.Duration `yaml:"sample_period"` // PID gains assume this period
	StatsWindow  int           `yaml:"stats_window"`
}

// SensorConfig contains the measurement source.
type SensorConfig struct {
	Path  string  `yaml:"path"`
	Scale float64 `yaml:"scale"` // raw value multiplier (0.001 for milli-degrees)
}

// MQTTConfig contains telemetry publishing parameters.
type MQTTConfig struct {
	Broker            string        `yaml:"broker"`
	ClientID          string        `yaml:"client_id"`
	TelemetryInterval time.Duration `yaml:"telemetry_interval"` // 0 disables
	BufferSize        int           `yaml:"buffer_size"`
}

// HTTPConfig contains the status server address (empty disables).
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SimConfig contains the simulated mains and thermal plant.
type SimConfig struct {
	MainsHz      float64 `yaml:"mains_hz"`
	Ambient      float32 `yaml:"ambient"`
	Initial      float32 `yaml:"initial"`
	HeaterWatts  float32 `yaml:"heater_watts"`
	HeatCapacity float32 `yaml:"heat_capacity"`
	LossWPerK    float32 `yaml:"loss_w_per_k"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Heater: HeaterConfig{
			WindowSize:   control.DefaultWindowSize,
			MvMin:        control.DefaultMvMin,
			MvMax:        control.DefaultMvMax,
			Chip:         gpio.DefaultChip,
			OutputPin:    gpio.DefaultPinOutput,
			ZeroCrossPin: gpio.DefaultPinZeroCross,
		},
		PID: PIDConfig{
			Kp:          8,
			Ki:          0.05,
			Kd:          20,
			IntegralMin: 0,
			IntegralMax: 2000,
		},
		Control: ControlConfig{
			Setpoint:     60,
			SamplePeriod: time.Second,
			StatsWindow:  30,
		},
		Sensor: SensorConfig{
			Path:  sensor.DefaultPath,
			Scale: sensor.MilliScale,
		},
		MQTT: MQTTConfig{
			Broker:            "tcp://192.168.1.200:1883",
			ClientID:          "heater-controller",
			TelemetryInterval: 10 * time.Second,
			BufferSize:        100,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
		Sim: SimConfig{
			MainsHz:      50,
			Ambient:      20,
			Initial:      20,
			HeaterWatts:  1000,
			HeatCapacity: 2000,
			LossWPerK:    10,
		},
	}
}

// Load loads configuration from a YAML file over the defaults. A missing
// file yields the defaults. The result is validated.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate rejects values the control core does not check at runtime.
func (c *Config) Validate() error {
	if c.Heater.WindowSize < 1 {
		return fmt.Errorf("heater.window_size must be >= 1")
	}
	if c.Heater.MvMin > c.Heater.MvMax {
		return fmt.Errorf("heater.mv_min (%d) must not exceed heater.mv_max (%d)", c.Heater.MvMin, c.Heater.MvMax)
	}
	if c.PID.IntegralMin > c.PID.IntegralMax {
		return fmt.Errorf("pid.integral_min (%v) must not exceed pid.integral_max (%v)", c.PID.IntegralMin, c.PID.IntegralMax)
	}
	if c.Control.SamplePeriod <= 0 {
		return fmt.Errorf("control.sample_period must be > 0")
	}
	if c.Control.StatsWindow < 2 {
		return fmt.Errorf("control.stats_window must be >= 2")
	}
	if c.MQTT.TelemetryInterval < 0 {
		return fmt.Errorf("mqtt.telemetry_interval must be >= 0")
	}
	if c.MQTT.BufferSize < 1 {
		return fmt.Errorf("mqtt.buffer_size must be >= 1")
	}
	if c.Sim.MainsHz <= 0 {
		return fmt.Errorf("sim.mains_hz must be > 0")
	}
	return nil
}

// ToControl converts the PID section to the core PID configuration.
func (p PIDConfig) ToControl() control.PIDConfig {
	return control.PIDConfig{
		Kp:          p.Kp,
		Ki:          p.Ki,
		Kd:          p.Kd,
		IntegralMin: p.IntegralMin,
		IntegralMax: p.IntegralMax,
	}
}
