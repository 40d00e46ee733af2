//go:build notray

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoTray = errors.New("this build has no tray support; use the watch command")

func newTrayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run in the system tray (not available in this build)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(ctx)
		},
	}
}

func runTray(*commandContext) error {
	return errNoTray
}
