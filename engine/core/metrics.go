package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// LoadStats is a snapshot of LoadMetrics.
type LoadStats struct {
	Loads    uint64
	Failures uint64
	Evicted  uint64
	// Average load time over the last AVG_COUNT successful loads.
	Average time.Duration
	Slowest time.Duration
}

// LoadMetrics tracks asset load timings with a rolling average, the same
// way the frame metrics used to.
type LoadMetrics struct {
	mu sync.Mutex

	avgCounter uint8
	samples    [AVG_COUNT]time.Duration
	filled     uint8
	stats      LoadStats
}

func NewLoadMetrics() *LoadMetrics {
	return &LoadMetrics{}
}

func (lm *LoadMetrics) RecordLoad(elapsed time.Duration) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.samples[lm.avgCounter] = elapsed
	lm.avgCounter++
	lm.avgCounter %= AVG_COUNT
	if lm.filled < AVG_COUNT {
		lm.filled++
	}

	var sum time.Duration
	for i := uint8(0); i < lm.filled; i++ {
		sum += lm.samples[i]
	}
	lm.stats.Average = sum / time.Duration(lm.filled)
	if elapsed > lm.stats.Slowest {
		lm.stats.Slowest = elapsed
	}
	lm.stats.Loads++
}

func (lm *LoadMetrics) RecordFailure() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.stats.Failures++
}

func (lm *LoadMetrics) RecordEviction() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.stats.Evicted++
}

func (lm *LoadMetrics) Snapshot() LoadStats {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.stats
}
