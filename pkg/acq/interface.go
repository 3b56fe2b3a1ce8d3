package acq

// Sampler performs single-shot conversions on one analog channel at a time.
// Read blocks until the conversion completes and returns a right-justified
// 10-bit code. Implementations are not reentrant.
type Sampler interface {
	Init()
	Read(ch Channel) uint16
}

// Transmitter delivers an outbound byte stream. Transmit blocks until every
// byte of p has been handed to the hardware.
type Transmitter interface {
	Init()
	Transmit(p []byte)
}
