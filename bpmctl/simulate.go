package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/board"
	"github.com/itohio/gobpm/pkg/config"
)

func newSimulateCmd() *cobra.Command {
	var (
		port   string
		count  int
		period time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the acquisition firmware on simulated peripherals",
		Long: `simulate runs the register-level USART and ADC drivers against a simulated
register file fed by synthetic sensor waveforms. The report stream goes to
stdout, or to a serial port so another host can read it as if a board were
attached.`,
		Example: `  bpmctl simulate --count 5
  bpmctl simulate --period 100ms
  bpmctl simulate --port /dev/ttyUSB1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if period > 0 {
				cfg.Acquisition.Period = period
			}

			var out io.Writer = cmd.OutOrStdout()
			if port != "" {
				conn, err := serial.Open(port, &serial.Mode{BaudRate: int(cfg.Acquisition.BaudRate)})
				if err != nil {
					return fmt.Errorf("failed to open serial port %s: %w", port, err)
				}
				defer conn.Close()
				out = conn
				Info(fmt.Sprintf("Transmitting on %s at %d baud", port, cfg.Acquisition.BaudRate))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := runSimulate(ctx, cfg, out, count)
			if err != nil {
				return err
			}

			Info(fmt.Sprintf("%d reports, %d bytes, %d conversions", res.reports, res.bytes, res.conversions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port to transmit on instead of stdout")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many reports (0 = run until interrupted)")
	cmd.Flags().DurationVar(&period, "period", 0, "override the delay between reports")
	return cmd
}

type simulateResult struct {
	reports     int
	bytes       uint64
	conversions uint64
}

// runSimulate runs the simulated board until ctx is cancelled or count
// reports have been sent.
func runSimulate(ctx context.Context, cfg *config.Config, out io.Writer, count int) (simulateResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var res simulateResult
	regs, loop, err := board.Simulate(cfg, out, acq.WithHook(func(acq.Report) {
		res.reports++
		if count > 0 && res.reports >= count {
			cancel()
		}
	}))
	if err != nil {
		return res, fmt.Errorf("failed to build simulated board: %w", err)
	}

	err = loop.Run(ctx)
	res.bytes = regs.Transmitted()
	res.conversions = regs.Conversions()
	if errors.Is(err, context.Canceled) {
		return res, nil
	}
	return res, err
}
