package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/monitor"
	"github.com/itohio/gobpm/pkg/trace"
)

var (
	colorInfo  = color.New(color.FgHiCyan)
	colorWarn  = color.New(color.FgHiYellow, color.Bold)
	colorError = color.New(color.FgHiRed, color.Bold)
	colorMuted = color.New(color.FgHiBlack)
	colorValue = color.New(color.FgHiWhite)

	// Indexed by acq.Channel.
	channelColors = [acq.NumChannels]*color.Color{
		acq.Temperature: color.New(color.FgYellow),
		acq.Pulse:       color.New(color.FgHiBlue),
		acq.Pressure:    color.New(color.FgHiGreen),
		acq.PPG:         color.New(color.FgHiMagenta),
	}
)

// Info prints an informational line to stderr.
func Info(msg string) {
	colorInfo.Fprintln(os.Stderr, msg)
}

// Warn prints a warning to stderr.
func Warn(msg string) {
	colorWarn.Fprintln(os.Stderr, "warning: "+msg)
}

// Fail prints an error to stderr.
func Fail(msg string) {
	colorError.Fprintln(os.Stderr, "error: "+msg)
}

// formatReading renders a reading as a timestamped, coloured report line.
func formatReading(r monitor.Reading) string {
	var b strings.Builder
	b.WriteString(colorMuted.Sprint(r.Timestamp.Format("15:04:05.000")))
	for _, ch := range acq.Channels {
		b.WriteString("  ")
		b.WriteString(channelColors[ch].Sprint(ch.Label() + ":"))
		b.WriteString(colorValue.Sprintf("%4d", r.Report.Get(ch)))
	}
	return b.String()
}

// formatStats renders one summary line per channel.
func formatStats(stats [acq.NumChannels]trace.Stats) string {
	var b strings.Builder
	for _, ch := range acq.Channels {
		st := stats[ch]
		fmt.Fprintf(&b, "%s %s min %4d  max %4d  mean %7.1f\n",
			channelColors[ch].Sprintf("%-4s", ch.Label()),
			colorMuted.Sprintf("%-12s", ch.String()),
			st.Min, st.Max, st.Mean)
	}
	return b.String()
}
