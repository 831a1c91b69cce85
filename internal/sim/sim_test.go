package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/heater-controller/internal/control"
)

func TestMainsAlternatesPolarity(t *testing.T) {
	var got []bool
	m := NewMains(50, func(b bool) { got = append(got, b) })
	for i := 0; i < 4; i++ {
		m.Edge()
	}
	assert.Equal(t, []bool{true, false, true, false}, got)
	assert.Equal(t, 10*time.Millisecond, m.Period())
}

func TestMainsRunStopsOnCancel(t *testing.T) {
	var n atomic.Int64
	m := NewMains(500, func(bool) { n.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return n.Load() >= 5 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func testPlantConfig() PlantConfig {
	return PlantConfig{
		Ambient:      20,
		Initial:      20,
		HeaterWatts:  1000,
		HeatCapacity: 2000,
		LossWPerK:    10,
	}
}

func TestPlantHeatsAndCools(t *testing.T) {
	p := NewPlant(testPlantConfig(), time.Now)

	hot := p.Advance(1, 60)
	assert.Greater(t, hot, float32(20))

	// Long enough to settle: equilibrium is ambient + P/loss.
	settled := p.Advance(1, 100000)
	assert.InDelta(t, 120, settled, 0.01)

	cooled := p.Advance(0, 100000)
	assert.InDelta(t, 20, cooled, 0.01)
}

func TestPlantReadUsesEnergizedFraction(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	p := NewPlant(testPlantConfig(), clock)

	for i := 0; i < 100; i++ {
		p.SetOutput(i%2 == 0)
	}
	now = now.Add(time.Hour * 24)

	v, err := p.Read()
	require.NoError(t, err)
	// Half power settles at ambient + 0.5*P/loss.
	assert.InDelta(t, 70, v, 0.01)
	assert.Equal(t, v, p.Temperature())
}

func TestPlantReadWithoutEdgesCools(t *testing.T) {
	cfg := testPlantConfig()
	cfg.Initial = 80
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewPlant(cfg, func() time.Time { return now })

	now = now.Add(time.Minute)
	v, err := p.Read()
	require.NoError(t, err)
	assert.Less(t, v, float32(80))
	assert.Greater(t, v, float32(20))
}

func TestPlantDrivenByGate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewPlant(testPlantConfig(), func() time.Time { return now })
	g := control.NewCycleGate(control.DefaultWindowSize, p)
	g.SetDutyTarget(control.DefaultWindowSize)
	m := NewMains(50, g.OnZeroCrossEdge)

	for i := 0; i < 2*control.DefaultWindowSize; i++ {
		m.Edge()
	}
	now = now.Add(time.Second)

	v, err := p.Read()
	require.NoError(t, err)
	assert.Greater(t, v, float32(20))
}
