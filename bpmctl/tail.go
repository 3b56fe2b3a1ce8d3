package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/monitor"
	"github.com/itohio/gobpm/pkg/trace"
)

func newTailCmd() *cobra.Command {
	var (
		port  string
		mock  bool
		count int
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print reports received from the acquisition board",
		Example: `  bpmctl tail --port /dev/ttyUSB0
  bpmctl tail --mock --count 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Serial.Port = port
			}

			var device monitor.Device
			if mock {
				device = monitor.NewMock(cfg)
				Info("Reading from simulated device")
			} else {
				device = monitor.New(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.BufferSize)
				Info(fmt.Sprintf("Reading from %s at %d baud", cfg.Serial.Port, cfg.Serial.BaudRate))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			history, err := runTail(ctx, cfg, device, cmd.OutOrStdout(), count)
			if err != nil {
				return err
			}

			if _, ok := history.Latest(); ok {
				fmt.Fprint(cmd.ErrOrStderr(), formatStats(history.Stats()))
			}
			if gaps := history.Gaps(); gaps > 0 {
				Warn(fmt.Sprintf("%d missed reports", gaps))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port override")
	cmd.Flags().BoolVar(&mock, "mock", false, "read from the simulated device")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many reports (0 = run until interrupted)")
	return cmd
}

// runTail prints readings from device until ctx is cancelled, the device
// stream ends or count readings have been printed. The device is closed on
// return.
func runTail(ctx context.Context, cfg *config.Config, device monitor.Device, out io.Writer, count int) (*trace.Trace, error) {
	if err := device.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer device.Close()

	history := trace.New(cfg)
	restarts := 0
	printed := 0
	readings := device.Readings()

	for {
		select {
		case <-ctx.Done():
			return history, nil
		case r, ok := <-readings:
			if !ok {
				return history, nil
			}

			if n := device.Restarts(); n != restarts {
				restarts = n
				Info(fmt.Sprintf("Device started (%d)", n))
			}

			history.Add(r)
			fmt.Fprintln(out, formatReading(r))

			printed++
			if count > 0 && printed >= count {
				return history, nil
			}
		}
	}
}
