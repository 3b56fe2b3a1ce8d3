package trace

import (
	"testing"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReadings(n int) []monitor.Reading {
	now := time.Unix(0, 0)
	out := make([]monitor.Reading, n)
	for i := range out {
		out[i] = monitor.Reading{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			Report:    acq.Report{uint16(i), 0, 0, 0},
		}
	}
	return out
}

func TestDownsample_NoDownsampling(t *testing.T) {
	readings := makeReadings(3)

	result := Downsample(nil, readings, 10)
	assert.Equal(t, readings, result)

	dst := make([]monitor.Reading, 0, 10)
	result = Downsample(dst, readings, 10)
	assert.Equal(t, readings, result)
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_WithDownsampling(t *testing.T) {
	readings := makeReadings(100)

	dst := make([]monitor.Reading, 0, 20)
	result := Downsample(dst, readings, 10)
	require.Len(t, result, 10)
	assert.Equal(t, cap(dst), cap(result))

	assert.Equal(t, readings[0], result[0])
	assert.Equal(t, readings[99], result[9])
	for i := 1; i < len(result); i++ {
		assert.True(t, result[i].Timestamp.After(result[i-1].Timestamp))
	}
}

func TestDownsample_Allocates(t *testing.T) {
	readings := makeReadings(50)

	result := Downsample(make([]monitor.Reading, 0, 2), readings, 5)
	require.Len(t, result, 5)
	assert.Equal(t, 5, cap(result))
}

func TestDownsample_Edges(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		maxPoints int
		want      []uint16
	}{
		{"empty", 0, 10, []uint16{}},
		{"single point", 10, 1, []uint16{9}},
		{"two points", 10, 2, []uint16{0, 9}},
		{"unlimited", 4, 0, []uint16{0, 1, 2, 3}},
		{"exact", 4, 4, []uint16{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Downsample(nil, makeReadings(tt.n), tt.maxPoints)
			got := make([]uint16, len(result))
			for i, r := range result {
				got[i] = r.Report[acq.Temperature]
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
