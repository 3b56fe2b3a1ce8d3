//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
)

var (
	uart = machine.UART0

	sensors = analogFrontEnd{
		adcs: [acq.NumChannels]machine.ADC{
			acq.Temperature: {Pin: PIN_TEMPERATURE},
			acq.Pulse:       {Pin: PIN_PULSE},
			acq.Pressure:    {Pin: PIN_PRESSURE},
			acq.PPG:         {Pin: PIN_PPG},
		},
	}
)

func main() {
	loop := acq.New(&sensors, serialPort{uart: uart}, acq.WithPeriod(REPORT_PERIOD))

	// Never returns with a background context.
	_ = loop.Run(context.Background())
}

// analogFrontEnd samples the four sensor inputs.
type analogFrontEnd struct {
	adcs [acq.NumChannels]machine.ADC
}

func (a *analogFrontEnd) Init() {
	machine.InitADC()

	cfg := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for i := range a.adcs {
		a.adcs[i].Pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		a.adcs[i].Configure(cfg)
	}
}

// Read returns a right-justified 10-bit code. Unknown channels read as 0.
func (a *analogFrontEnd) Read(ch acq.Channel) uint16 {
	if int(ch) >= len(a.adcs) {
		return 0
	}

	time.Sleep(ACQUISITION_TIME)

	// Get scales every resolution to 16 bits.
	return a.adcs[ch].Get() >> (16 - ADC_RESOLUTION)
}

// serialPort transmits on the hardware UART.
type serialPort struct {
	uart *machine.UART
}

func (s serialPort) Init() {
	s.uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})
}

func (s serialPort) Transmit(p []byte) {
	// Write blocks until the bytes are queued.
	_, _ = s.uart.Write(p)
}
