package trace

import "github.com/itohio/gobpm/pkg/monitor"

// Downsample reduces readings to at most maxPoints by decimation.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// The last reading is always kept so the display ends on the newest report.
func Downsample(dst []monitor.Reading, readings []monitor.Reading, maxPoints int) []monitor.Reading {
	if maxPoints <= 0 || len(readings) <= maxPoints {
		if cap(dst) >= len(readings) {
			dst = dst[:len(readings)]
			copy(dst, readings)
			return dst
		}
		result := make([]monitor.Reading, len(readings))
		copy(result, readings)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]monitor.Reading, 0, maxPoints)
	}

	if maxPoints == 1 {
		return append(dst, readings[len(readings)-1])
	}

	// Spread maxPoints indices evenly over [0, len-1].
	last := len(readings) - 1
	for i := 0; i < maxPoints; i++ {
		dst = append(dst, readings[i*last/(maxPoints-1)])
	}

	return dst
}
