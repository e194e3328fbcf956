// Package cli: команды solarctl для офиса: спецификация проекта в терминале и выгрузка в Excel.
package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// cfgFile is set from --config.
var cfgFile string

// noColor toggles ANSI color output off when set via --no-color.
var noColor bool

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "solarctl",
		Short:         "solarctl shows and exports project bills of materials",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $CONFIG_PATH or config/example.yaml)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newBOMCmd(), newExportCmd())
	return root
}

// Execute is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
