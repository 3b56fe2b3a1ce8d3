package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/monitor"
	"github.com/itohio/gobpm/pkg/trace"
)

// ScopeWidget is a custom Fyne widget that plots the four sensor channels
// oscilloscope style.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu       sync.RWMutex
	readings []monitor.Reading // Downsampled for display, reused between updates
	stats    [acq.NumChannels]trace.Stats
	gaps     int
	restarts int
	visible  [acq.NumChannels]bool

	xMin, xMax time.Time

	maxDisplayPoints int
}

var _ fyne.Widget = (*ScopeWidget)(nil)

// New creates a new ScopeWidget instance with all channels visible.
func New(cfg *config.Config) *ScopeWidget {
	if cfg == nil {
		cfg = config.Default()
	}

	maxPoints := cfg.Display.MaxPoints
	if maxPoints <= 0 {
		maxPoints = 1000
	}

	s := &ScopeWidget{
		cfg:              cfg,
		readings:         make([]monitor.Reading, 0, maxPoints),
		maxDisplayPoints: maxPoints,
	}
	for i := range s.visible {
		s.visible[i] = true
	}
	s.updateTimeRange()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with the current trace window.
// This should be called from the trace callback using fyne.Do().
func (s *ScopeWidget) UpdateData(readings []monitor.Reading, gaps int) {
	s.mu.Lock()
	s.readings = trace.Downsample(s.readings, readings, s.maxDisplayPoints)
	s.stats = trace.Summarize(readings)
	s.gaps = gaps
	s.updateTimeRange()
	s.mu.Unlock()

	s.Refresh()
}

// SetRestarts sets the device restart count shown in the legend.
func (s *ScopeWidget) SetRestarts(n int) {
	s.mu.Lock()
	s.restarts = n
	s.mu.Unlock()

	s.Refresh()
}

// SetVisible shows or hides a channel trace.
func (s *ScopeWidget) SetVisible(ch acq.Channel, visible bool) {
	if int(ch) >= acq.NumChannels {
		return
	}

	s.mu.Lock()
	s.visible[ch] = visible
	s.mu.Unlock()

	s.Refresh()
}

// ChannelVisible reports whether ch is drawn.
func (s *ScopeWidget) ChannelVisible(ch acq.Channel) bool {
	if int(ch) >= acq.NumChannels {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible[ch]
}

// SetMaxPoints limits how many readings are drawn per channel.
func (s *ScopeWidget) SetMaxPoints(n int) {
	if n <= 0 {
		return
	}

	s.mu.Lock()
	s.maxDisplayPoints = n
	s.mu.Unlock()
}

// Clear drops the displayed data.
func (s *ScopeWidget) Clear() {
	s.mu.Lock()
	s.readings = s.readings[:0]
	s.stats = [acq.NumChannels]trace.Stats{}
	s.gaps = 0
	s.restarts = 0
	s.updateTimeRange()
	s.mu.Unlock()

	s.Refresh()
}

// updateTimeRange sets the X axis span. The axis is at least the configured
// window wide so a fresh trace grows from the left.
func (s *ScopeWidget) updateTimeRange() {
	window := time.Duration(s.cfg.Display.WindowSeconds * float64(time.Second))
	if window <= 0 {
		window = 10 * time.Second
	}

	if len(s.readings) == 0 {
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(window)
		return
	}

	s.xMin = s.readings[0].Timestamp
	s.xMax = s.readings[len(s.readings)-1].Timestamp
	if s.xMax.Sub(s.xMin) < window {
		s.xMax = s.xMin.Add(window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
