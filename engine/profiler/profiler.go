package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one reporting window's worth of tick and memory statistics.
type Stats struct {
	TicksPerSecond float64
	AvgTick        time.Duration
	MaxTick        time.Duration
	Errors         int
	HeapMB         float64
	SysMB          float64
	AllocRateMB    float64
	GCCount        uint32
	LastPauseUs    uint64
	MaxPauseUs     uint64
}

// Profiler tracks tick rate, tick cost and memory statistics for performance monitoring.
// Outputs stats to its logger at a configurable interval.
type Profiler struct {
	tickCount      int
	errorCount     int
	busy           time.Duration
	maxTick        time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	logger *slog.Logger
	now    func() time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and output is discarded until WithLogger is set.
//
// Parameters:
//   - options: functional options for profiler configuration
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per engine tick to record its cost and outcome.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: tick rate, average and worst tick time, failed ticks, heap usage,
// allocation rate, and GC count and pause times.
//
// Parameters:
//   - cost: how long the tick's work took
//   - err: the tick's error, if any
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(cost time.Duration, err error) bool {
	p.tickCount++
	p.busy += cost
	p.maxTick = max(p.maxTick, cost)
	if err != nil {
		p.errorCount++
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		TicksPerSecond: float64(p.tickCount) / elapsed.Seconds(),
		AvgTick:        p.busy / time.Duration(p.tickCount),
		MaxTick:        p.maxTick,
		Errors:         p.errorCount,
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:    float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		"tps", s.TicksPerSecond,
		"avg_tick", s.AvgTick,
		"max_tick", s.MaxTick,
		"errors", s.Errors,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.tickCount = 0
	p.errorCount = 0
	p.busy = 0
	p.maxTick = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recent reporting window.
func (p *Profiler) Last() Stats {
	return p.last
}
