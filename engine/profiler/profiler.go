package profiler

import (
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Logs a summary record at info level once per interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// Stats is one interval's summary.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// NewProfiler creates a new Profiler. Intervals <= 0 default to 1 second.
//
// Parameters:
//   - interval: time between log records
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Tick should be called once per frame.
// Logs statistics when the update interval has elapsed: FPS, heap usage, allocation rate,
// GC count and pause times, total memory obtained from the OS.
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := p.collect(elapsed)

	common.Logger().Info("profiler",
		slog.Float64("fps", round2(s.FPS)),
		slog.Float64("heap_mb", round2(s.HeapMB)),
		slog.Float64("alloc_rate_mb_s", round2(s.AllocRateMB)),
		slog.Uint64("gc", uint64(s.GCCount)),
		slog.Uint64("gc_last_us", s.LastPauseUs),
		slog.Uint64("gc_max_us", s.MaxPauseUs),
		slog.Float64("sys_mb", round2(s.SysMB)),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// collect derives Stats from the current memStats snapshot.
func (p *Profiler) collect(elapsed time.Duration) Stats {
	secs := elapsed.Seconds()
	s := Stats{
		FPS:     float64(p.frameCount) / secs,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}

	// TotalAlloc only grows, so the delta is churn over the interval
	s.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		start := p.lastGCCount
		if s.GCCount-start > 256 {
			start = s.GCCount - 256
		}
		for i := start; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
