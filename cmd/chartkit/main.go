// Command chartkit builds a chart scene from a configuration file and drives
// its render cycle.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "chartkit",
		Short:        "Chart coordination core driver",
		Long:         "chartkit builds charts, axes, series and tools from a scene file and renders frames.",
		SilenceUsage: true,
		Version:      version,
	}
	root.SetVersionTemplate(fmt.Sprintf("chartkit version %s (%s)\n", version, commit))
	root.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error); overrides the config")

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "chartkit version %s (%s)\n", version, commit)
			return err
		},
	}
}
