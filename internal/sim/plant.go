package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
)

// PlantConfig describes a first-order thermal model of the heated load.
type PlantConfig struct {
	Ambient      float32 // °C
	Initial      float32 // °C at start
	HeaterWatts  float32 // power when fully energized
	HeatCapacity float32 // J/K
	LossWPerK    float32 // W/K to ambient
}

// Plant is a simulated heater and temperature sensor. The gate drives it as
// a control.Output from the mains goroutine; the sampling loop reads it as a
// sensor.Source.
type Plant struct {
	cfg PlantConfig
	now func() time.Time

	edges   atomic.Uint64
	onEdges atomic.Uint64

	mu        sync.Mutex
	temp      float32
	lastEdges uint64
	lastOn    uint64
	lastTime  time.Time
}

// NewPlant creates a plant at cfg.Initial. now is injectable for tests.
func NewPlant(cfg PlantConfig, now func() time.Time) *Plant {
	return &Plant{cfg: cfg, now: now, temp: cfg.Initial, lastTime: now()}
}

// SetOutput counts an edge and whether it was energized.
func (p *Plant) SetOutput(on bool) {
	p.edges.Add(1)
	if on {
		p.onEdges.Add(1)
	}
}

// Read advances the model to now using the energized fraction of edges
// since the previous read, and returns the temperature.
func (p *Plant) Read() (float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.now()
	dt := float32(t.Sub(p.lastTime).Seconds())
	p.lastTime = t

	edges, on := p.edges.Load(), p.onEdges.Load()
	var duty float32
	if n := edges - p.lastEdges; n > 0 {
		duty = float32(on-p.lastOn) / float32(n)
	}
	p.lastEdges, p.lastOn = edges, on

	p.advance(duty, dt)
	return p.temp, nil
}

// Advance moves the model forward dt seconds at the given duty (0..1).
func (p *Plant) Advance(duty, dt float32) float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(duty, dt)
	return p.temp
}

func (p *Plant) advance(duty, dt float32) {
	if dt <= 0 {
		return
	}
	if p.cfg.LossWPerK <= 0 || p.cfg.HeatCapacity <= 0 {
		// Lossless: integrate directly.
		if p.cfg.HeatCapacity > 0 {
			p.temp += p.cfg.HeaterWatts * duty * dt / p.cfg.HeatCapacity
		}
		return
	}
	eq := p.cfg.Ambient + p.cfg.HeaterWatts*duty/p.cfg.LossWPerK
	tau := p.cfg.HeatCapacity / p.cfg.LossWPerK
	p.temp = eq + (p.temp-eq)*math32.Exp(-dt/tau)
}

// Edges returns the number of SetOutput calls seen.
func (p *Plant) Edges() uint64 {
	return p.edges.Load()
}

// Temperature returns the model temperature without advancing it.
func (p *Plant) Temperature() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.temp
}

// Close is a no-op.
func (p *Plant) Close() error {
	return nil
}
