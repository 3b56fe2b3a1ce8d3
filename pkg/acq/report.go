package acq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Banner is transmitted once after the peripherals are initialized.
	Banner = "BP Monitor Started\r\n"

	// LineSize is the capacity of the per-iteration report buffer.
	// "T:1023 PZ:1023 PR:1023 PPG:1023\r\n" is 33 bytes.
	LineSize = 40

	// MaxCode is the largest 10-bit conversion code.
	MaxCode = 1023
)

// ErrMalformedReport is returned by ParseReport for lines that do not match the report format.
var ErrMalformedReport = errors.New("malformed report line")

// Report holds one raw sample per channel, indexed by Channel.
type Report [NumChannels]uint16

// Get returns the sample for ch.
func (r Report) Get(ch Channel) uint16 {
	return r[ch]
}

// AppendReport appends the wire form of r to dst:
// "T:<v0> PZ:<v1> PR:<v2> PPG:<v3>\r\n".
func AppendReport(dst []byte, r Report) []byte {
	for i, ch := range Channels {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = append(dst, ch.Label()...)
		dst = append(dst, ':')
		dst = strconv.AppendUint(dst, uint64(r[ch]), 10)
	}
	return append(dst, '\r', '\n')
}

// String returns the report line without the trailing CRLF.
func (r Report) String() string {
	var buf [LineSize]byte
	line := AppendReport(buf[:0], r)
	return string(line[:len(line)-2])
}

// IsBanner reports whether line is the startup banner. Surrounding
// whitespace, including the CRLF, is ignored.
func IsBanner(line string) bool {
	return strings.TrimSpace(line) == strings.TrimSpace(Banner)
}

// ParseReport parses a report line produced by AppendReport. Surrounding
// whitespace, including the CRLF, is ignored.
func ParseReport(line string) (Report, error) {
	fields := strings.Fields(line)
	if len(fields) != NumChannels {
		return Report{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedReport, NumChannels, len(fields))
	}

	var r Report
	for i, ch := range Channels {
		label, value, ok := strings.Cut(fields[i], ":")
		if !ok {
			return Report{}, fmt.Errorf("%w: field %q has no separator", ErrMalformedReport, fields[i])
		}
		if label != ch.Label() {
			return Report{}, fmt.Errorf("%w: expected label %s, got %q", ErrMalformedReport, ch.Label(), label)
		}
		v, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return Report{}, fmt.Errorf("%w: invalid %s value: %v", ErrMalformedReport, ch, err)
		}
		if v > MaxCode {
			return Report{}, fmt.Errorf("%w: %s value out of range: %d (max %d)", ErrMalformedReport, ch, v, MaxCode)
		}
		r[ch] = uint16(v)
	}
	return r, nil
}
