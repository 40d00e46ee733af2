package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var poll bool
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Create a session and file new screenshots until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("poll") {
				cfg.Watch.Poll = poll
			}
			if cmd.Flags().Changed("dir") {
				expanded, err := expandFlagPath(dir)
				if err != nil {
					return err
				}
				cfg.Paths.WatchDir = expanded
			}

			a, err := ctx.newApp()
			if err != nil {
				return err
			}
			a.AddStatusSink(newStatusPrinter(cmd.OutOrStdout()).sink)

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.Start(runCtx); err != nil {
				return err
			}
			defer a.Stop()

			if _, err := a.StartSession(ctx.sessionSpec()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Filing into %s (manifest: %s). Press Ctrl+C to stop.\n",
				a.Sessions().ActivePath(), yesNo(cfg.Manifest.Enabled))

			<-runCtx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&poll, "poll", false, "Poll the directory instead of using filesystem notifications")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to watch (overrides paths.watch_dir)")
	return cmd
}
