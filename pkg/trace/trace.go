// Package trace keeps a time-windowed history of received reports for display.
package trace

import (
	"sync"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/monitor"
)

var _ History = (*Trace)(nil)

// gapFactor is how many report periods may pass between two readings before
// the interval counts as a missed report.
const gapFactor = 1.5

// Stats summarises one channel over the current window.
type Stats struct {
	Min  uint16
	Max  uint16
	Last uint16
	Mean float64
}

// History processes readings and maintains a windowed buffer of them.
type History interface {
	Process(input <-chan monitor.Reading)
	// Readings returns the buffer, oldest first.
	Readings() []monitor.Reading
	Latest() (monitor.Reading, bool)
	Stats() [acq.NumChannels]Stats
	// Gaps counts reading intervals longer than gapFactor periods.
	Gaps() int
	OnUpdate(func(readings []monitor.Reading, gaps int))
}

// Trace implements History.
// Readings are evicted by timestamp, not by count.
type Trace struct {
	readings []monitor.Reading
	gaps     int

	mu sync.RWMutex

	callbacks []func(readings []monitor.Reading, gaps int)
	cbMu      sync.RWMutex

	window time.Duration
	period time.Duration

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a new Trace from display and acquisition settings.
func New(cfg *config.Config) *Trace {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Trace{
		readings:  make([]monitor.Reading, 0),
		callbacks: make([]func(readings []monitor.Reading, gaps int), 0),
		window:    time.Duration(cfg.Display.WindowSeconds * float64(time.Second)),
		period:    cfg.Acquisition.Period,
	}
}

// Process consumes readings until the input channel closes, then marks the
// trace as shut down.
func (t *Trace) Process(input <-chan monitor.Reading) {
	for r := range input {
		t.Add(r)
	}

	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

// Add appends a reading, evicts readings older than the window and notifies
// callbacks unless the trace has shut down.
func (t *Trace) Add(r monitor.Reading) {
	t.mu.Lock()

	if n := len(t.readings); n > 0 && t.period > 0 {
		dt := r.Timestamp.Sub(t.readings[n-1].Timestamp)
		if float64(dt) > gapFactor*float64(t.period) {
			t.gaps++
		}
	}

	t.readings = append(t.readings, r)

	if t.window > 0 {
		cutoff := r.Timestamp.Add(-t.window)
		i := 0
		for i < len(t.readings) && !t.readings[i].Timestamp.After(cutoff) {
			i++
		}
		if i > 0 {
			t.readings = append(t.readings[:0], t.readings[i:]...)
		}
	}

	notify := !t.shutdown
	t.mu.Unlock()

	if notify {
		t.notifyCallbacks()
	}
}

// Readings returns a copy of the current buffer.
func (t *Trace) Readings() []monitor.Reading {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]monitor.Reading, len(t.readings))
	copy(result, t.readings)
	return result
}

// Latest returns the most recent reading.
func (t *Trace) Latest() (monitor.Reading, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.readings) == 0 {
		return monitor.Reading{}, false
	}
	return t.readings[len(t.readings)-1], true
}

// Stats returns per-channel min, max, mean and last code over the window.
// All fields are zero when the buffer is empty.
func (t *Trace) Stats() [acq.NumChannels]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Summarize(t.readings)
}

// Gaps returns how many missed reports have been observed since the last
// Reset.
func (t *Trace) Gaps() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gaps
}

// Reset drops all buffered readings and the gap count.
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readings = t.readings[:0]
	t.gaps = 0
}

// SetWindow changes the history span. Older readings are evicted on the next
// reading.
func (t *Trace) SetWindow(window time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.window = window
}

// OnUpdate registers a callback invoked after every reading.
// The callback receives a copy of the buffer and should return quickly.
func (t *Trace) OnUpdate(callback func(readings []monitor.Reading, gaps int)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

// ResetShutdown allows callbacks again.
// Call it before starting a new Process chain.
func (t *Trace) ResetShutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown = false
}

func (t *Trace) notifyCallbacks() {
	t.mu.RLock()
	readings := make([]monitor.Reading, len(t.readings))
	copy(readings, t.readings)
	gaps := t.gaps
	t.mu.RUnlock()

	t.cbMu.RLock()
	callbacks := make([]func(readings []monitor.Reading, gaps int), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(readings, gaps)
		}
	}
}

// Summarize computes per-channel statistics over readings.
func Summarize(readings []monitor.Reading) [acq.NumChannels]Stats {
	var stats [acq.NumChannels]Stats
	if len(readings) == 0 {
		return stats
	}

	var sums [acq.NumChannels]float64
	for i := range stats {
		stats[i].Min = acq.MaxCode
	}
	for _, r := range readings {
		for ch, v := range r.Report {
			if v < stats[ch].Min {
				stats[ch].Min = v
			}
			if v > stats[ch].Max {
				stats[ch].Max = v
			}
			sums[ch] += float64(v)
		}
	}

	last := readings[len(readings)-1].Report
	for ch := range stats {
		stats[ch].Last = last[ch]
		stats[ch].Mean = sums[ch] / float64(len(readings))
	}
	return stats
}
