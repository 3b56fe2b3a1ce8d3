package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/itohio/gobpm/pkg/config"
)

var (
	globalConfig  string
	globalNoColor bool
	cfg           *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bpmctl",
		Short: "Blood pressure monitor acquisition tools",
		Long: `bpmctl runs the acquisition firmware on simulated peripherals and reads
report streams from a serial port.

Run 'bpmctl <command> --help' for details on each command.
`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if globalNoColor {
				color.NoColor = true
			}
			var err error
			cfg, err = config.Load(globalConfig)
			if err != nil {
				Warn(fmt.Sprintf("Config load error: %v, using defaults", err))
				cfg = config.Default()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&globalConfig, "config", "c", "config.yaml", "configuration file (.yaml or .toml)")
	root.PersistentFlags().BoolVar(&globalNoColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newSimulateCmd(),
		newTailCmd(),
		newPortsCmd(),
	)
	return root
}

// Execute is the entry point called from main().
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		Fail(err.Error())
		return err
	}
	return nil
}
