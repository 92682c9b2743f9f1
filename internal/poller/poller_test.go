package poller

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc6a_go/internal/config"
	"fc6a_go/internal/models"
	"fc6a_go/internal/store"
)

type funcReader struct {
	fn func(ts time.Time, dev models.Device) []models.Sample
}

func (r funcReader) ReadDevice(ts time.Time, dev models.Device) []models.Sample {
	return r.fn(ts, dev)
}

type countingRenderer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRenderer) Render(snapshot map[string]map[string][]models.Sample, timestamps []time.Time) []models.PanelFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingRenderer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func tempDevice(name string) models.Device {
	return models.Device{
		Name: name,
		Tags: []models.Tag{{Label: "Temp", Register: "D0200", Area: "D", Addr: 200, Kind: models.TagFloat}},
	}
}

func pollerConfig(window int) config.PollerConfig {
	return config.PollerConfig{Interval: 10 * time.Millisecond, WindowSize: window}
}

func TestSharedLogicalTimestampPerTick(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string][]time.Time)

	reader := funcReader{fn: func(ts time.Time, dev models.Device) []models.Sample {
		mu.Lock()
		seen[dev.Name] = append(seen[dev.Name], ts)
		mu.Unlock()
		// Leitura artificialmente lenta: o timestamp lógico não muda
		time.Sleep(2 * time.Millisecond)
		return []models.Sample{models.Float(ts, 1)}
	}}

	st := store.New(10)
	p := New(pollerConfig(10), []models.Device{tempDevice("A"), tempDevice("B")}, reader, st, &countingRenderer{})

	p.tick()
	p.tick()

	require.Len(t, seen["A"], 2)
	require.Len(t, seen["B"], 2)

	// Dentro de um mesmo tick, todos os dispositivos veem o mesmo instante
	assert.Equal(t, seen["A"][0], seen["B"][0])
	assert.Equal(t, seen["A"][1], seen["B"][1])
	assert.NotEqual(t, seen["A"][0], seen["A"][1])

	timestamps := st.Timestamps()
	require.Len(t, timestamps, 2)
	assert.Equal(t, seen["A"][0], timestamps[0])
}

func TestFailedDeviceDoesNotAffectOthers(t *testing.T) {
	n := 0
	reader := funcReader{fn: func(ts time.Time, dev models.Device) []models.Sample {
		if dev.Name == "B" {
			return []models.Sample{models.Null(ts)}
		}
		defer func() { n++ }()
		return []models.Sample{models.Float(ts, 10.0+float64(n)/10)}
	}}

	st := store.New(10)
	p := New(pollerConfig(10), []models.Device{tempDevice("A"), tempDevice("B")}, reader, st, &countingRenderer{})

	for i := 0; i < 3; i++ {
		p.tick()
	}

	snap := st.SnapshotFor("Temp")
	require.Len(t, snap["A"], 3)
	require.Len(t, snap["B"], 3)
	require.Equal(t, 3, st.Len())

	for i, sample := range snap["A"] {
		require.NotNil(t, sample.Value)
		assert.InDelta(t, 10.0+float64(i)/10, *sample.Value, 1e-9)
	}
	for _, sample := range snap["B"] {
		assert.Nil(t, sample.Value)
	}
}

func TestStatusReflectsFailures(t *testing.T) {
	failing := true
	reader := funcReader{fn: func(ts time.Time, dev models.Device) []models.Sample {
		if failing {
			return []models.Sample{models.Null(ts)}
		}
		return []models.Sample{models.Float(ts, 1)}
	}}

	st := store.New(10)
	p := New(pollerConfig(10), []models.Device{tempDevice("A")}, reader, st, &countingRenderer{})

	p.tick()
	status := p.GetStatus()
	assert.Equal(t, "degradado", status.Status)
	assert.NotEmpty(t, status.LastError)
	assert.Equal(t, 1, status.ErrorCount)
	assert.Equal(t, int64(1), status.Ticks)

	failing = false
	p.tick()
	status = p.GetStatus()
	assert.Equal(t, "ok", status.Status)
	assert.Empty(t, status.LastError)
	assert.Equal(t, int64(2), status.Ticks)
}

func TestWindowBoundedAcrossTicks(t *testing.T) {
	reader := funcReader{fn: func(ts time.Time, dev models.Device) []models.Sample {
		return []models.Sample{models.Float(ts, 1)}
	}}

	st := store.New(2)
	p := New(pollerConfig(2), []models.Device{tempDevice("A")}, reader, st, &countingRenderer{})

	for i := 0; i < 5; i++ {
		p.tick()
	}

	assert.Equal(t, 2, st.Len())
	assert.Len(t, st.SnapshotFor("Temp")["A"], 2)
}

func TestRendererCalledEveryTick(t *testing.T) {
	reader := funcReader{fn: func(ts time.Time, dev models.Device) []models.Sample {
		return []models.Sample{models.Float(ts, 1)}
	}}

	renderer := &countingRenderer{}
	st := store.New(10)
	p := New(pollerConfig(10), []models.Device{tempDevice("A")}, reader, st, renderer)

	p.tick()
	p.tick()
	p.tick()
	assert.Equal(t, 3, renderer.Calls())
}

func TestStartStopLifecycle(t *testing.T) {
	reader := funcReader{fn: func(ts time.Time, dev models.Device) []models.Sample {
		return []models.Sample{models.Float(ts, 1)}
	}}

	st := store.New(10)
	p := New(pollerConfig(10), []models.Device{tempDevice("A")}, reader, st, &countingRenderer{})

	require.NoError(t, p.Start())
	assert.Error(t, p.Start(), "segundo Start deve falhar")

	time.Sleep(35 * time.Millisecond)
	p.Stop()

	assert.False(t, p.IsRunning())
	assert.Equal(t, StateStopped, p.State())
	assert.GreaterOrEqual(t, p.GetStatus().Ticks, int64(2))

	// Stop repetido é inofensivo
	p.Stop()
}

func TestStartWithoutDevicesFails(t *testing.T) {
	st := store.New(10)
	p := New(pollerConfig(10), nil, funcReader{fn: nil}, st, &countingRenderer{})
	assert.Error(t, p.Start())
}
