package scope

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/monitor"
	"github.com/itohio/gobpm/pkg/trace"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the grid, traces and legend.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	readings := r.scope.readings
	stats := r.scope.stats
	visible := r.scope.visible
	gaps := r.scope.gaps
	restarts := r.scope.restarts
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	plot := newPlotArea(size)
	r.drawGrid(plot, xMin, xMax)

	for _, ch := range acq.Channels {
		if visible[ch] && len(readings) > 1 {
			r.drawChannel(plot, ch, readings, xMin, xMax)
		}
	}

	if len(readings) > 0 {
		r.drawLegend(plot, stats, visible)
	}
	r.drawStatus(plot, gaps, restarts)
}

// drawGrid draws the oscilloscope-style grid labelled in codes and seconds.
func (r *scopeRenderer) drawGrid(plot plotArea, xMin, xMax time.Time) {
	const numHLines = 8
	for i := 0; i < numHLines+1; i++ {
		code := uint16(yMax - i*(yMax-yMin)/numHLines)
		y := plot.yFor(code)
		r.addLine(plot.x, y, plot.x+plot.w, y, gridColor, 1)

		text := canvas.NewText(strconv.Itoa(int(code)), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plot.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	const numVLines = 10
	span := xMax.Sub(xMin)
	for i := 0; i < numVLines+1; i++ {
		offset := span * time.Duration(i) / numVLines
		x := plot.xFor(xMin.Add(offset), xMin, xMax)
		r.addLine(x, plot.y, x, plot.y+plot.h, gridColor, 1)

		text := canvas.NewText(formatTime(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plot.y+plot.h+5))
		r.objects = append(r.objects, text)
	}
}

// drawChannel draws one channel as connected line segments.
func (r *scopeRenderer) drawChannel(plot plotArea, ch acq.Channel, readings []monitor.Reading, xMin, xMax time.Time) {
	c := ChannelColor(ch)

	prev := fyne.NewPos(plot.xFor(readings[0].Timestamp, xMin, xMax), plot.yFor(readings[0].Report.Get(ch)))
	for _, rd := range readings[1:] {
		next := fyne.NewPos(plot.xFor(rd.Timestamp, xMin, xMax), plot.yFor(rd.Report.Get(ch)))
		r.addLine(prev.X, prev.Y, next.X, next.Y, c, 1.5)
		prev = next
	}
}

// drawLegend prints the latest code and window range of each visible channel.
func (r *scopeRenderer) drawLegend(plot plotArea, stats [acq.NumChannels]trace.Stats, visible [acq.NumChannels]bool) {
	y := plot.y + 5
	for _, ch := range acq.Channels {
		if !visible[ch] {
			continue
		}
		st := stats[ch]
		label := fmt.Sprintf("%s:%d  [%d..%d]", ch.Label(), st.Last, st.Min, st.Max)

		text := canvas.NewText(label, ChannelColor(ch))
		text.TextSize = 12
		text.TextStyle = fyne.TextStyle{Monospace: true}
		text.Move(fyne.NewPos(plot.x+10, y))
		r.objects = append(r.objects, text)
		y += 16
	}
}

// drawStatus shows the missed report and restart counters in the top right.
func (r *scopeRenderer) drawStatus(plot plotArea, gaps, restarts int) {
	if gaps == 0 && restarts == 0 {
		return
	}

	text := canvas.NewText(fmt.Sprintf("restarts %d  missed %d", restarts, gaps), labelColor)
	text.TextSize = 11
	text.Alignment = fyne.TextAlignTrailing
	text.Move(fyne.NewPos(plot.x+plot.w-10, plot.y+5))
	r.objects = append(r.objects, text)
}

func (r *scopeRenderer) addLine(x1, y1, x2, y2 float32, c color.Color, width float32) {
	line := canvas.NewLine(c)
	line.Position1 = fyne.NewPos(x1, y1)
	line.Position2 = fyne.NewPos(x2, y2)
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
