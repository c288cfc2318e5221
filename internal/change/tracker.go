package change

import (
	"math"
	"sync"
	"time"
)

// Tracker remembers the last accepted frame and when the picture last changed.
type Tracker struct {
	mu         sync.Mutex
	tolerance  float64
	valid      bool
	hash       uint32
	mean       [3]float64
	lastChange time.Time
	changes    uint64
}

// NewTracker creates a tracker. With tolerance > 0 a hash difference only
// counts when the summed channel mean difference reaches tolerance.
func NewTracker(tolerance float64) *Tracker {
	return &Tracker{tolerance: tolerance}
}

// SetTolerance changes the tolerance for later observations.
func (t *Tracker) SetTolerance(tolerance float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tolerance = tolerance
}

// Observe records a frame and reports whether it counts as a change.
// The first frame after creation or Reset is always a change.
func (t *Tracker) Observe(now time.Time, hash uint32, mean [3]float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.valid {
		if hash == t.hash {
			return false
		}
		if t.tolerance > 0 && meanDelta(mean, t.mean) < t.tolerance {
			return false
		}
	}

	t.valid = true
	t.hash = hash
	t.mean = mean
	t.lastChange = now
	t.changes++
	return true
}

// Reset forgets the reference frame.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.valid = false
}

// Unchanged returns how long the picture has been unchanged at now.
func (t *Tracker) Unchanged(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.valid || now.Before(t.lastChange) {
		return 0
	}
	return now.Sub(t.lastChange)
}

// LastChange returns the time of the last accepted change.
func (t *Tracker) LastChange() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastChange
}

// Changes returns the number of accepted changes.
func (t *Tracker) Changes() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changes
}

func meanDelta(a, b [3]float64) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1]) + math.Abs(a[2]-b[2])
}

// IdleDetector turns the unchanged duration into idle/active transitions.
type IdleDetector struct {
	threshold time.Duration
	idle      bool
}

// NewIdleDetector creates a detector. A zero threshold disables it.
func NewIdleDetector(threshold time.Duration) *IdleDetector {
	return &IdleDetector{threshold: threshold}
}

// SetThreshold changes the threshold; the current state is kept.
func (d *IdleDetector) SetThreshold(threshold time.Duration) {
	d.threshold = threshold
	if threshold <= 0 {
		d.idle = false
	}
}

// Update returns the new state and whether it changed.
func (d *IdleDetector) Update(unchanged time.Duration) (idle, transitioned bool) {
	if d.threshold <= 0 {
		return false, false
	}
	now := unchanged >= d.threshold
	if now == d.idle {
		return d.idle, false
	}
	d.idle = now
	return now, true
}
