package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"auditsnap/internal/capture"
	"auditsnap/internal/filing"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the screen into the current session",
	}
	captureCmd.AddCommand(newCaptureKindCommand(ctx, capture.KindFull, "full", "Capture all displays"))
	captureCmd.AddCommand(newCaptureDisplayCommand(ctx))
	captureCmd.AddCommand(newCaptureRegionCommand(ctx))
	return captureCmd
}

func newCaptureKindCommand(ctx *commandContext, kind capture.Kind, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, ctx, kind, image.Rectangle{})
		},
	}
}

func newCaptureDisplayCommand(ctx *commandContext) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "display",
		Short: "Capture one display (default: the display under the cursor)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("index") {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				cfg.Capture.Display = index
			}
			return runCapture(cmd, ctx, capture.KindDisplay, image.Rectangle{})
		},
	}
	cmd.Flags().IntVar(&index, "index", capture.CursorDisplay, "Display index, -1 for the display under the cursor")
	return cmd
}

func newCaptureRegionCommand(ctx *commandContext) *cobra.Command {
	var rect string
	cmd := &cobra.Command{
		Use:   "region",
		Short: "Capture a rectangle, or pick one interactively where supported",
		RunE: func(cmd *cobra.Command, args []string) error {
			var region image.Rectangle
			if rect != "" {
				r, err := capture.ParseRect(rect)
				if err != nil {
					return err
				}
				region = r
			}
			return runCapture(cmd, ctx, capture.KindRegion, region)
		},
	}
	cmd.Flags().StringVar(&rect, "rect", "", "Region as x,y,width,height")
	return cmd
}

func runCapture(cmd *cobra.Command, ctx *commandContext, kind capture.Kind, region image.Rectangle) error {
	a, err := ctx.newApp()
	if err != nil {
		return err
	}
	a.AddStatusSink(newStatusPrinter(cmd.OutOrStdout()).sink)

	if _, err := a.CreateSession(ctx.sessionSpec()); err != nil {
		a.FlushStatus()
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := a.CaptureNow(runCtx, kind, region)
	a.FlushStatus()
	if err != nil {
		return err
	}
	if res.State != filing.StateMoved {
		return fmt.Errorf("capture not filed (%s): %w", res.State, res.Err)
	}
	return nil
}
