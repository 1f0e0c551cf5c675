package profiler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfiler(interval time.Duration) (*Profiler, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(interval)
	p.now = clock.now
	p.lastTime = clock.t
	return p, clock
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })
	return &buf
}

func TestNewProfilerDefaultInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewProfiler(0).updateInterval)
	assert.Equal(t, time.Second, NewProfiler(-time.Minute).updateInterval)
	assert.Equal(t, 250*time.Millisecond, NewProfiler(250*time.Millisecond).updateInterval)
}

func TestTickLogsOncePerInterval(t *testing.T) {
	buf := captureLogs(t)
	p, clock := newTestProfiler(time.Second)

	for range 59 {
		clock.advance(time.Second / 60)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, buf.Len())

	clock.advance(time.Second - 59*(time.Second/60))
	require.True(t, p.Tick())
	assert.Zero(t, p.frameCount)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "profiler", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.InDelta(t, 60.0, record["fps"], 0.5)
	assert.Contains(t, record, "heap_mb")
	assert.Contains(t, record, "gc_max_us")
}

func TestTickResetsWindow(t *testing.T) {
	captureLogs(t)
	p, clock := newTestProfiler(100 * time.Millisecond)

	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick())
	clock.advance(50 * time.Millisecond)
	assert.False(t, p.Tick())
	assert.Equal(t, 1, p.frameCount)
}

func TestCollectTracksGCPauses(t *testing.T) {
	p, _ := newTestProfiler(time.Second)
	p.frameCount = 30
	p.lastGCCount = 1
	p.memStats = runtime.MemStats{
		Alloc:      2 * 1024 * 1024,
		TotalAlloc: 10 * 1024 * 1024,
		Sys:        8 * 1024 * 1024,
		NumGC:      3,
	}
	p.lastTotalAlloc = 4 * 1024 * 1024
	p.memStats.PauseNs[0] = 900_000
	p.memStats.PauseNs[1] = 5_000
	p.memStats.PauseNs[2] = 20_000

	s := p.collect(2 * time.Second)

	assert.Equal(t, 15.0, s.FPS)
	assert.Equal(t, 2.0, s.HeapMB)
	assert.Equal(t, 8.0, s.SysMB)
	assert.Equal(t, 3.0, s.AllocRateMB)
	assert.Equal(t, uint64(20), s.LastPauseUs)
	// pause 0 predates the window
	assert.Equal(t, uint64(20), s.MaxPauseUs)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 59.99, round2(59.9899))
	assert.Equal(t, 0.0, round2(0.001))
}
