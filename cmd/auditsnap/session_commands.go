package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"auditsnap/internal/session"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Create and inspect session folders",
	}
	sessionCmd.AddCommand(newSessionCreateCommand(ctx))
	sessionCmd.AddCommand(newSessionNextCommand(ctx))
	sessionCmd.AddCommand(newSessionListCommand(ctx))
	return sessionCmd
}

func newSessionCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the session folder for the configured fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.newApp()
			if err != nil {
				return err
			}
			a.AddStatusSink(newStatusPrinter(cmd.OutOrStdout()).sink)
			s, err := a.CreateSession(ctx.sessionSpec())
			a.FlushStatus()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current Session: %s\n", s.Name)
			return nil
		},
	}
}

func newSessionNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Create the folder after the highest existing sequence for the configured fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spec := ctx.sessionSpec()
			latest, err := session.LatestSequence(cfg.Paths.OutputDir, spec)
			if err != nil {
				return err
			}
			if latest > 0 {
				spec.Sequence = latest + 1
			}

			a, err := ctx.newApp()
			if err != nil {
				return err
			}
			a.AddStatusSink(newStatusPrinter(cmd.OutOrStdout()).sink)
			s, err := a.CreateSession(spec)
			a.FlushStatus()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current Session: %s\n", s.Name)
			return nil
		},
	}
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List session folders in the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			summaries, err := session.List(cfg.Paths.OutputDir)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No sessions in %s\n", cfg.Paths.OutputDir)
				return nil
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{s.Name, strconv.Itoa(s.Files), s.ModTime.Format("2006-01-02 15:04")})
			}
			fmt.Fprintln(out, renderTable([]string{"Session", "Files", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}
