// Package board wires the register-level drivers into the acquisition loop.
package board

import (
	"fmt"
	"io"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/pic"
	"github.com/itohio/gobpm/pkg/sim"
)

// New returns the acquisition loop driving the USART and ADC behind bus.
func New(bus pic.Bus, cfg config.AcquisitionConfig, opts ...acq.Option) (*acq.Loop, error) {
	uart, err := pic.NewUART(bus, pic.UARTConfig{
		ClockHz:   cfg.ClockHz,
		BaudRate:  cfg.BaudRate,
		HighSpeed: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure transmitter: %w", err)
	}

	adcCfg := pic.DefaultADCConfig()
	if cfg.AcquisitionTime > 0 {
		adcCfg.AcquisitionTime = cfg.AcquisitionTime
	}
	adc := pic.NewADC(bus, adcCfg)

	if cfg.Period > 0 {
		opts = append([]acq.Option{acq.WithPeriod(cfg.Period)}, opts...)
	}
	return acq.New(adc, uart, opts...), nil
}

// Simulate builds a simulated register file fed by the configured waveforms
// and the loop that runs on it. Transmitted bytes go to tx.
func Simulate(cfg *config.Config, tx io.Writer, opts ...acq.Option) (*sim.Registers, *acq.Loop, error) {
	regs := sim.New(tx, sim.NewWaveforms(cfg.Sim, time.Now()),
		sim.WithTxPolls(cfg.Sim.TxPolls),
		sim.WithConversionPolls(cfg.Sim.ConversionPolls),
		sim.WithVRef(cfg.Sim.VRef),
	)

	loop, err := New(regs, cfg.Acquisition, opts...)
	if err != nil {
		return nil, nil, err
	}
	return regs, loop, nil
}
