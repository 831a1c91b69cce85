// Command heater-controller regulates an AC heater with burst-fire cycle
// gating and publishes telemetry to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/heater-controller/internal/config"
	"github.com/sweeney/heater-controller/internal/control"
	"github.com/sweeney/heater-controller/internal/gpio"
	"github.com/sweeney/heater-controller/internal/logic"
	"github.com/sweeney/heater-controller/internal/mqtt"
	"github.com/sweeney/heater-controller/internal/sensor"
	"github.com/sweeney/heater-controller/internal/sim"
	"github.com/sweeney/heater-controller/internal/status"
	"github.com/sweeney/heater-controller/internal/web"
)

// maxReadFailures is the number of consecutive sensor failures after which
// the heater is switched off until a read succeeds again.
const maxReadFailures = 5

func main() {
	configPath := flag.String("config", "/etc/heater-controller.yaml", "YAML configuration file (missing file uses defaults)")
	simulate := flag.Bool("simulate", false, "Run against simulated mains and a thermal model instead of GPIO")
	printState := flag.Bool("print-state", false, "Read the sensor once, print it and exit")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address, empty string disables (overrides config)")
	setpoint := flag.Float64("setpoint", 0, "Regulation setpoint (overrides config)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from the broker, "off" disables)`)

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	var o overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			o.Broker = broker
		case "http":
			o.HTTPAddr = httpAddr
		case "setpoint":
			sp := float32(*setpoint)
			o.Setpoint = &sp
		}
	})
	o.apply(cfg)

	ws := resolveWSBroker(*wsBroker, cfg.MQTT.Broker)
	if err := run(cfg, *simulate, *printState, *heartbeat, ws); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// overrides holds command-line values that replace config file values.
// A nil field was not given on the command line.
type overrides struct {
	Broker   *string
	HTTPAddr *string
	Setpoint *float32
}

func (o overrides) apply(cfg *config.Config) {
	if o.Broker != nil {
		cfg.MQTT.Broker = *o.Broker
	}
	if o.HTTPAddr != nil {
		cfg.HTTP.Addr = *o.HTTPAddr
	}
	if o.Setpoint != nil {
		cfg.Control.Setpoint = *o.Setpoint
	}
}

func run(cfg *config.Config, simulate, printState bool, heartbeat time.Duration, wsBroker string) error {
	var (
		plant  *sim.Plant
		source sensor.Source
	)
	if simulate {
		plant = sim.NewPlant(sim.PlantConfig{
			Ambient:      cfg.Sim.Ambient,
			Initial:      cfg.Sim.Initial,
			HeaterWatts:  cfg.Sim.HeaterWatts,
			HeatCapacity: cfg.Sim.HeatCapacity,
			LossWPerK:    cfg.Sim.LossWPerK,
		}, time.Now)
		source = plant
	} else {
		source = sensor.NewFileSource(cfg.Sensor.Path, cfg.Sensor.Scale)
	}
	defer source.Close()

	// Print state mode
	if printState {
		v, err := source.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("measurement: %.2f (setpoint %.2f)\n", v, cfg.Control.Setpoint)
		return nil
	}

	// Initialize heater output
	var (
		out          gpio.Output
		outputErrors = func() uint64 { return 0 }
	)
	if simulate {
		out = plant
	} else {
		realOut, err := gpio.NewRealOutput(cfg.Heater.Chip, cfg.Heater.OutputPin)
		if err != nil {
			return fmt.Errorf("init heater output: %w", err)
		}
		out = realOut
		outputErrors = realOut.Errors
	}
	defer out.Close()

	// Control core
	gate := control.NewCycleGate(cfg.Heater.WindowSize, out)
	heater := control.NewHeater(gate)
	heater.SetMvLimits(cfg.Heater.MvMin, cfg.Heater.MvMax)
	pid := control.NewPID(cfg.PID.ToControl())
	stats := control.NewRollingStats(cfg.Control.StatsWindow)
	startTime := time.Now()
	regulator := logic.NewRegulator(pid, heater, stats, cfg.Control.Setpoint, startTime)

	// Zero-cross edges drive the gate from their own goroutine
	var edges func() uint64
	if simulate {
		mains := sim.NewMains(cfg.Sim.MainsHz, gate.OnZeroCrossEdge)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go mains.Run(ctx)
		edges = plant.Edges
		log.Printf("simulation: mains=%vHz edge period=%v", cfg.Sim.MainsHz, mains.Period())
	} else {
		zc, err := gpio.NewRealZeroCross(cfg.Heater.Chip, cfg.Heater.ZeroCrossPin, cfg.Heater.ZeroCrossActiveLow, gate.OnZeroCrossEdge)
		if err != nil {
			return fmt.Errorf("init zero-cross input: %w", err)
		}
		defer zc.Close()
		edges = zc.Edges
	}

	gateInfo := func() status.GateInfo {
		return status.GateInfo{
			CyclesRemaining: gate.CyclesRemaining(),
			DutyTarget:      gate.DutyTarget(),
			Edges:           edges(),
			OutputErrors:    outputErrors(),
		}
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.BufferSize)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(startTime, status.Config{
		SamplePeriodMs: cfg.Control.SamplePeriod.Milliseconds(),
		TelemetryMs:    cfg.MQTT.TelemetryInterval.Milliseconds(),
		WindowSize:     gate.WindowSize(),
		MvMin:          cfg.Heater.MvMin,
		MvMax:          cfg.Heater.MvMax,
		Kp:             cfg.PID.Kp,
		Ki:             cfg.PID.Ki,
		Kd:             cfg.PID.Kd,
		Broker:         cfg.MQTT.Broker,
		HTTPPort:       cfg.HTTP.Addr,
		WSBroker:       wsBroker,
		Simulated:      simulate,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetGate(gateInfo())
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: setpoint=%v period=%v window=%d mv=%d..%d kp=%v ki=%v kd=%v broker=%s telemetry=%v simulate=%v",
		cfg.Control.Setpoint, cfg.Control.SamplePeriod, gate.WindowSize(), cfg.Heater.MvMin, cfg.Heater.MvMax,
		cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd, cfg.MQTT.Broker, cfg.MQTT.TelemetryInterval, simulate)

	ticker := time.NewTicker(cfg.Control.SamplePeriod)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(source, regulator, gateInfo, publisher, publisher, tracker, cfg.MQTT.TelemetryInterval, heartbeat, time.Now, ticker.C, sigCh)
}

// runLoop samples the measurement on every tick and runs one regulation
// step. It is the only goroutine touching the regulator.
func runLoop(source sensor.Source, regulator *logic.Regulator, gateInfo func() status.GateInfo, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, telemetry, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()
	failures := 0

	updateTracker := func() {
		if tracker == nil {
			return
		}
		tracker.Update(regulator.Last(), regulator.Counts())
		if gateInfo != nil {
			tracker.SetGate(gateInfo())
		}
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			regulator.Off()

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker()
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			v, err := source.Read()
			if err != nil {
				failures++
				log.Printf("sensor read error (%d consecutive): %v", failures, err)
				if failures == maxReadFailures {
					log.Printf("sensor unavailable, heater off")
					regulator.Off()
					updateTracker()
				}
				continue
			}
			if failures > 0 {
				log.Printf("sensor recovered after %d failed reads", failures)
				failures = 0
			}

			regulator.Step(logic.Input{Measurement: v, Time: t})

			// Update status tracker for HTTP consumers
			updateTracker()

			if td := regulator.CheckTelemetry(t, telemetry); td != nil {
				r := td.Reading
				log.Printf("telemetry: pv=%.2f sp=%.2f mv=%.1f out=%d sat=%q avg=%.2f sd=%.3f samples=%d",
					r.Measurement, r.Setpoint, r.MV, r.CurrentMv, r.Saturation, r.Average, r.StdDev, td.Counts.Samples)
				if err := publisher.Publish(r); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
