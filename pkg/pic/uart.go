package pic

import (
	"errors"
	"fmt"

	"github.com/itohio/gobpm/pkg/acq"
)

const (
	// DefaultClockHz is the crystal frequency the firmware is built for.
	DefaultClockHz = 20000000
	// DefaultBaudRate is the report stream rate.
	DefaultBaudRate = 9600
)

// ErrBaudOutOfRange is returned when no SPBRG value yields the requested baud rate.
var ErrBaudOutOfRange = errors.New("baud rate out of range")

// UARTConfig describes the asynchronous transmitter setup.
type UARTConfig struct {
	ClockHz   uint32
	BaudRate  uint32
	HighSpeed bool // BRGH
}

// DefaultUARTConfig returns 9600 baud at 20 MHz with the high speed generator.
func DefaultUARTConfig() UARTConfig {
	return UARTConfig{
		ClockHz:   DefaultClockHz,
		BaudRate:  DefaultBaudRate,
		HighSpeed: true,
	}
}

// BaudDivisor computes the SPBRG value for asynchronous mode:
// clock/(16*baud) - 1 with BRGH set, clock/(64*baud) - 1 otherwise.
func BaudDivisor(clockHz, baud uint32, highSpeed bool) (uint8, error) {
	if baud == 0 {
		return 0, fmt.Errorf("%w: zero baud rate", ErrBaudOutOfRange)
	}
	scale := uint64(64)
	if highSpeed {
		scale = 16
	}
	n := uint64(clockHz) / (scale * uint64(baud))
	if n == 0 || n-1 > 0xFF {
		return 0, fmt.Errorf("%w: %d baud at %d Hz", ErrBaudOutOfRange, baud, clockHz)
	}
	return uint8(n - 1), nil
}

// UART is the asynchronous serial transmitter.
type UART struct {
	options

	bus     Bus
	cfg     UARTConfig
	divisor uint8
}

var _ acq.Transmitter = (*UART)(nil)

// NewUART validates cfg and returns a transmitter driver. The registers are
// not touched until Init.
func NewUART(bus Bus, cfg UARTConfig, opts ...Option) (*UART, error) {
	div, err := BaudDivisor(cfg.ClockHz, cfg.BaudRate, cfg.HighSpeed)
	if err != nil {
		return nil, err
	}
	return &UART{
		options: newOptions(opts),
		bus:     bus,
		cfg:     cfg,
		divisor: div,
	}, nil
}

// Divisor returns the SPBRG value written by Init.
func (u *UART) Divisor() uint8 {
	return u.divisor
}

// Init configures the pins, baud rate generator and transmitter.
func (u *UART) Init() {
	clearBits(u.bus, TRISC, TRISC6)
	setBits(u.bus, TRISC, TRISC7)

	u.bus.Write(SPBRG, u.divisor)
	if u.cfg.HighSpeed {
		setBits(u.bus, TXSTA, BRGH)
	} else {
		clearBits(u.bus, TXSTA, BRGH)
	}

	clearBits(u.bus, TXSTA, SYNC)
	setBits(u.bus, RCSTA, SPEN)
	setBits(u.bus, TXSTA, TXEN)
}

// TxChar waits for TXIF and loads b into TXREG.
func (u *UART) TxChar(b byte) {
	u.wait(u.txReady)
	u.bus.Write(TXREG, b)
}

// TxString transmits p up to the first NUL byte or the end of the slice.
func (u *UART) TxString(p []byte) {
	for _, b := range p {
		if b == 0 {
			return
		}
		u.TxChar(b)
	}
}

// Transmit implements acq.Transmitter.
func (u *UART) Transmit(p []byte) {
	u.TxString(p)
}

func (u *UART) txReady() bool {
	return bitSet(u.bus, PIR1, TXIF)
}
