// Package pic drives the USART and A/D converter of a PIC16F877A-class
// microcontroller through its special function registers.
//
// Registers are reached through a Bus so the same drivers run against real
// memory-mapped hardware or against the simulated register file in pkg/sim.
package pic

// Register names a special function register.
type Register uint8

const (
	TRISC Register = iota
	SPBRG
	TXSTA
	RCSTA
	TXREG
	PIR1
	ADCON0
	ADCON1
	ADRESH
	ADRESL

	// NumRegisters is the size of a register file covering every Register.
	NumRegisters
)

var registerNames = [NumRegisters]string{
	"TRISC", "SPBRG", "TXSTA", "RCSTA", "TXREG", "PIR1",
	"ADCON0", "ADCON1", "ADRESH", "ADRESL",
}

func (r Register) String() string {
	if r < NumRegisters {
		return registerNames[r]
	}
	return "?"
}

// TRISC bits.
const (
	TRISC6 uint8 = 1 << 6 // RC6/TX direction
	TRISC7 uint8 = 1 << 7 // RC7/RX direction
)

// TXSTA bits.
const (
	BRGH uint8 = 1 << 2
	SYNC uint8 = 1 << 4
	TXEN uint8 = 1 << 5
)

// RCSTA bits.
const (
	SPEN uint8 = 1 << 7
)

// PIR1 bits.
const (
	TXIF uint8 = 1 << 4
)

// ADCON0 bits and fields.
const (
	ADON     uint8 = 1 << 0
	GO       uint8 = 1 << 2 // GO/DONE
	CHSMask  uint8 = 0x38   // CHS2:CHS0
	ADCSMask uint8 = 0xC0   // ADCS1:ADCS0

	// adcon0Keep clears the channel select and GO bits while keeping the
	// conversion clock and ADON.
	adcon0Keep uint8 = 0xC1
)

// CHSShift is the bit position of the channel select field.
const CHSShift = 3

// ADCON1 bits.
const (
	ADFM  uint8 = 1 << 7 // right justified result
	ADCS2 uint8 = 1 << 6
)

// Bus reads and writes special function registers.
type Bus interface {
	Read(reg Register) uint8
	Write(reg Register, v uint8)
}

func setBits(bus Bus, reg Register, mask uint8) {
	bus.Write(reg, bus.Read(reg)|mask)
}

func clearBits(bus Bus, reg Register, mask uint8) {
	bus.Write(reg, bus.Read(reg)&^mask)
}

func bitSet(bus Bus, reg Register, mask uint8) bool {
	return bus.Read(reg)&mask != 0
}
