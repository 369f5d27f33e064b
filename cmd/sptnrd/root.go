package main

import (
	"strings"

	"github.com/spf13/cobra"

	"sptnr/internal/config"
	"sptnr/internal/daemonrun"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string
	var development bool

	cmd := &cobra.Command{
		Use:           "sptnrd",
		Short:         "HTTP trigger and run log viewer for sptnr",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolved, exists, err := config.Load(strings.TrimSpace(configFlag))
			if err != nil {
				return err
			}
			configPath := ""
			if exists {
				configPath = resolved
			}
			return daemonrun.Run(cmd.Context(), cfg, configPath, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log lines")
	return cmd
}
