package scope

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"github.com/chewxy/math32"
	"github.com/itohio/gobpm/pkg/acq"
)

// Fixed vertical range: the full 10-bit code span.
const (
	yMin = 0
	yMax = acq.MaxCode
)

// channelColors are the trace colours indexed by acq.Channel.
var channelColors = [acq.NumChannels]color.RGBA{
	acq.Temperature: {R: 255, G: 165, B: 0, A: 255},   // Orange
	acq.Pulse:       {R: 100, G: 200, B: 255, A: 255}, // Light blue
	acq.Pressure:    {R: 120, G: 220, B: 120, A: 255}, // Green
	acq.PPG:         {R: 230, G: 90, B: 160, A: 255},  // Pink
}

// ChannelColor returns the colour used to draw ch.
func ChannelColor(ch acq.Channel) color.Color {
	if int(ch) >= len(channelColors) {
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
	return channelColors[ch]
}

// plotArea is the rectangle the traces are drawn into.
type plotArea struct {
	x, y, w, h float32
}

// newPlotArea subtracts the axis margins from size.
func newPlotArea(size fyne.Size) plotArea {
	const (
		marginLeft   = 50
		marginRight  = 20
		marginTop    = 20
		marginBottom = 40
	)
	return plotArea{
		x: marginLeft,
		y: marginTop,
		w: math32.Max(size.Width-marginLeft-marginRight, 0),
		h: math32.Max(size.Height-marginTop-marginBottom, 0),
	}
}

// xFor maps t into the plot, clamped to its edges.
func (p plotArea) xFor(t, xMin, xMax time.Time) float32 {
	span := xMax.Sub(xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	frac := float32(t.Sub(xMin).Seconds() / span)
	return p.x + clamp01(frac)*p.w
}

// yFor maps a conversion code into the plot. Code 0 is the bottom edge.
func (p plotArea) yFor(code uint16) float32 {
	frac := float32(int(code)-yMin) / float32(yMax-yMin)
	return p.y + p.h - clamp01(frac)*p.h
}

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Min(math32.Max(v, 0), 1)
}
