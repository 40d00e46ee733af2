package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var overrides sessionFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag, &overrides)

	rootCmd := &cobra.Command{
		Use:           "auditsnap",
		Short:         "File audit screenshots into session folders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			return ctx.applySessionFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(ctx)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	flags.StringVar(&overrides.year, "year", "", "Session year")
	flags.StringVar(&overrides.project, "project", "", "Session project")
	flags.StringVar(&overrides.auditType, "audit-type", "", "Session audit type")
	flags.StringVar(&overrides.sequence, "sequence", "", "Session sequence number")

	rootCmd.AddCommand(newTrayCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newSessionCommand(ctx))
	rootCmd.AddCommand(newCaptureCommand(ctx))
	rootCmd.AddCommand(newManifestCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
