// Package sim simulates the special function registers the pic drivers use,
// including the USART transmit path and the A/D converter.
package sim

import (
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/pic"
)

// DefaultVRef is the converter reference voltage (VDD).
const DefaultVRef = 5.0

// Power-on values of the registers that are not zero.
const (
	resetTRISC uint8 = 0xFF
	resetTXSTA uint8 = 0x02 // TRMT
	resetPIR1  uint8 = pic.TXIF
)

// Source supplies the voltage present on an analog input.
type Source interface {
	Voltage(ch acq.Channel, t time.Time) float64
}

// Volts is a Source with a fixed voltage per input, indexed by channel.
type Volts [8]float64

// Voltage implements Source.
func (v *Volts) Voltage(ch acq.Channel, _ time.Time) float64 {
	return v[ch&7]
}

// Option configures Registers.
type Option func(*Registers)

// WithTxPolls sets how many PIR1 reads see TXIF clear after a TXREG write.
func WithTxPolls(n int) Option {
	return func(r *Registers) {
		r.txPolls = n
	}
}

// WithConversionPolls sets how many ADCON0 reads see GO set after a
// conversion starts.
func WithConversionPolls(n int) Option {
	return func(r *Registers) {
		r.convPolls = n
	}
}

// WithVRef sets the converter reference voltage.
func WithVRef(v float64) Option {
	return func(r *Registers) {
		r.vref = v
	}
}

// WithClock sets the time source passed to Source.Voltage.
func WithClock(now func() time.Time) Option {
	return func(r *Registers) {
		r.now = now
	}
}

// Registers is a simulated register file. It implements pic.Bus.
type Registers struct {
	mu   sync.Mutex
	regs [pic.NumRegisters]uint8

	tx  io.Writer
	src Source
	now func() time.Time

	vref      float64
	txPolls   int
	convPolls int

	txBusy   int
	convBusy int

	transmitted uint64
	conversions uint64
}

var _ pic.Bus = (*Registers)(nil)

// New returns a register file in its power-on state. Bytes written to TXREG
// are forwarded to tx; conversions sample src.
func New(tx io.Writer, src Source, opts ...Option) *Registers {
	r := &Registers{
		tx:   tx,
		src:  src,
		now:  time.Now,
		vref: DefaultVRef,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// Reset restores the power-on register values.
func (r *Registers) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.regs = [pic.NumRegisters]uint8{}
	r.regs[pic.TRISC] = resetTRISC
	r.regs[pic.TXSTA] = resetTXSTA
	r.regs[pic.PIR1] = resetPIR1
	r.txBusy = 0
	r.convBusy = 0
}

// Read implements pic.Bus. Polling PIR1 or ADCON0 advances the simulated
// transmitter and converter.
func (r *Registers) Read(reg pic.Register) uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.regs[reg]
	switch reg {
	case pic.PIR1:
		if r.txBusy > 0 {
			r.txBusy--
			if r.txBusy == 0 {
				r.regs[pic.PIR1] |= pic.TXIF
			}
		}
	case pic.ADCON0:
		if r.convBusy > 0 {
			r.convBusy--
			if r.convBusy == 0 {
				r.complete()
			}
		}
	}
	return v
}

// Write implements pic.Bus.
func (r *Registers) Write(reg pic.Register, v uint8) {
	r.mu.Lock()

	switch reg {
	case pic.TXREG:
		r.regs[reg] = v
		r.transmitted++
		if r.txPolls > 0 {
			r.regs[pic.PIR1] &^= pic.TXIF
			r.txBusy = r.txPolls
		}
		r.mu.Unlock()
		r.emit(v)
		return

	case pic.ADCON0:
		converting := r.regs[reg]&pic.GO != 0
		r.regs[reg] = v
		if !converting && v&pic.GO != 0 && v&pic.ADON != 0 {
			r.start()
		}

	default:
		r.regs[reg] = v
	}

	r.mu.Unlock()
}

// Snapshot returns a copy of every register.
func (r *Registers) Snapshot() [pic.NumRegisters]uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs
}

// Transmitted returns the number of bytes written to TXREG.
func (r *Registers) Transmitted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transmitted
}

// Conversions returns the number of completed conversions.
func (r *Registers) Conversions() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conversions
}

// Code converts a voltage to a 10-bit code against vref, clamped to range.
func Code(v, vref float64) uint16 {
	if vref <= 0 {
		return 0
	}
	c := math.Round(v / vref * acq.MaxCode)
	if c < 0 {
		return 0
	}
	if c > acq.MaxCode {
		return acq.MaxCode
	}
	return uint16(c)
}

func (r *Registers) emit(b byte) {
	if r.tx == nil {
		return
	}
	if _, err := r.tx.Write([]byte{b}); err != nil {
		log.Printf("Error writing transmitted byte: %v", err)
	}
}

func (r *Registers) start() {
	if r.convPolls <= 0 {
		r.complete()
		return
	}
	r.convBusy = r.convPolls
}

// complete latches the conversion result for the selected channel and
// clears GO/DONE.
func (r *Registers) complete() {
	ch := acq.Channel((r.regs[pic.ADCON0] & pic.CHSMask) >> pic.CHSShift)

	var code uint16
	if r.src != nil {
		code = Code(r.src.Voltage(ch, r.now()), r.vref)
	}

	if r.regs[pic.ADCON1]&pic.ADFM != 0 {
		r.regs[pic.ADRESH] = uint8(code >> 8)
		r.regs[pic.ADRESL] = uint8(code)
	} else {
		r.regs[pic.ADRESH] = uint8(code >> 2)
		r.regs[pic.ADRESL] = uint8(code << 6)
	}

	r.regs[pic.ADCON0] &^= pic.GO
	r.conversions++
}
