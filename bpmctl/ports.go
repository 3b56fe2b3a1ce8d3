package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itohio/gobpm/pkg/monitor"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := monitor.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				Warn("No serial ports found")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, p := range ports {
				marker := "  "
				if p.Name == cfg.Serial.Port {
					marker = colorInfo.Sprint("* ")
				}
				fmt.Fprintln(out, marker+colorValue.Sprint(p.Name))
			}
			return nil
		},
	}
}
