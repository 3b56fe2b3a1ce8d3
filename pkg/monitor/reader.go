package monitor

import (
	"bufio"
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
)

// Reading is a report received by the host.
type Reading struct {
	Timestamp time.Time // Host receive time
	Report    acq.Report
}

// lineReader turns a report stream into Readings. It owns out and closes it
// when the stream ends.
type lineReader struct {
	out      chan Reading
	now      func() time.Time
	onBanner func()
}

func (lr *lineReader) run(ctx context.Context, r io.Reader) {
	defer close(lr.out)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in line reader: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if acq.IsBanner(line) {
			if lr.onBanner != nil {
				lr.onBanner()
			}
			continue
		}

		report, err := acq.ParseReport(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		// Send reading to channel (non-blocking)
		select {
		case lr.out <- Reading{Timestamp: lr.now(), Report: report}:
		case <-ctx.Done():
			return
		default:
			log.Printf("Readings channel full, dropping reading")
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF && ctx.Err() == nil {
		log.Printf("Error reading report stream: %v", err)
	}
}
