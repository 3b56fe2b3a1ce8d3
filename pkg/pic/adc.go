package pic

import (
	"time"

	"github.com/itohio/gobpm/pkg/acq"
)

// DefaultAcquisitionTime lets the sample-and-hold settle after a channel
// change.
const DefaultAcquisitionTime = 2 * time.Millisecond

// ADCClock selects the conversion clock.
type ADCClock uint8

const (
	ClockFosc2 ADCClock = iota
	ClockFosc8
	ClockFosc32
	ClockRC
	ClockFosc4
	ClockFosc16
	ClockFosc64
)

// bits returns the ADCS1:ADCS0 field for ADCON0 and whether ADCS2 is set.
func (c ADCClock) bits() (adcs uint8, adcs2 bool) {
	switch c {
	case ClockFosc2:
		return 0, false
	case ClockFosc8:
		return 1, false
	case ClockFosc32:
		return 2, false
	case ClockFosc4:
		return 0, true
	case ClockFosc16:
		return 1, true
	case ClockFosc64:
		return 2, true
	}
	return 3, false
}

// ADCConfig describes the converter setup.
type ADCConfig struct {
	Clock           ADCClock
	AcquisitionTime time.Duration
}

// DefaultADCConfig returns Fosc/32, the fastest clock giving a legal TAD at
// 20 MHz, and a 2 ms acquisition time.
func DefaultADCConfig() ADCConfig {
	return ADCConfig{
		Clock:           ClockFosc32,
		AcquisitionTime: DefaultAcquisitionTime,
	}
}

// ADC is the single-shot analog to digital converter.
type ADC struct {
	options

	bus Bus
	cfg ADCConfig
}

var _ acq.Sampler = (*ADC)(nil)

// NewADC returns a converter driver. The registers are not touched until Init.
func NewADC(bus Bus, cfg ADCConfig, opts ...Option) *ADC {
	return &ADC{
		options: newOptions(opts),
		bus:     bus,
		cfg:     cfg,
	}
}

// Init powers the converter on channel 0 with a right justified result and
// every port pin analog.
func (a *ADC) Init() {
	adcs, adcs2 := a.cfg.Clock.bits()
	a.bus.Write(ADCON0, adcs<<6|ADON)

	adcon1 := ADFM
	if adcs2 {
		adcon1 |= ADCS2
	}
	a.bus.Write(ADCON1, adcon1)
}

// Read selects ch, waits the acquisition time, converts and returns the
// 10-bit result. Only the low three bits of ch are used.
func (a *ADC) Read(ch acq.Channel) uint16 {
	a.bus.Write(ADCON0, a.bus.Read(ADCON0)&adcon0Keep)
	a.bus.Write(ADCON0, a.bus.Read(ADCON0)|(uint8(ch)<<CHSShift)&CHSMask)

	a.delay(a.cfg.AcquisitionTime)

	setBits(a.bus, ADCON0, GO)
	a.wait(a.converted)

	result := uint16(a.bus.Read(ADRESH))<<8 + uint16(a.bus.Read(ADRESL))
	return result & acq.MaxCode
}

func (a *ADC) converted() bool {
	return !bitSet(a.bus, ADCON0, GO)
}
