package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"auditsnap/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect session evidence manifests",
	}
	manifestCmd.AddCommand(newManifestVerifyCommand(ctx))
	manifestCmd.AddCommand(newManifestShowCommand(ctx))
	return manifestCmd
}

func newManifestVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <session-dir>",
		Short: "Check the hash chain and re-hash every filed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := expandFlagPath(args[0])
			if err != nil {
				return err
			}
			report, err := manifest.Verify(dir, cfg.Manifest.FileName)
			if err != nil {
				return fmt.Errorf("manifest verification failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest OK: %d entries, %d bytes (%s)\n", report.Entries, report.Bytes, report.Path)
			return nil
		},
	}
}

func newManifestShowCommand(ctx *commandContext) *cobra.Command {
	var tail int
	cmd := &cobra.Command{
		Use:   "show <session-dir>",
		Short: "Print manifest entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := expandFlagPath(args[0])
			if err != nil {
				return err
			}
			rec := manifest.NewRecorder(cfg.Manifest.FileName, nil)
			var entries []manifest.Entry
			if tail > 0 {
				entries, err = manifest.Tail(rec.Path(dir), tail)
			} else {
				entries, err = manifest.Read(rec.Path(dir))
			}
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				sum := e.SHA256
				if len(sum) > 12 {
					sum = sum[:12]
				}
				rows = append(rows, []string{
					strconv.FormatUint(e.Seq, 10),
					e.Time.Local().Format("2006-01-02 15:04:05"),
					e.Name,
					e.Origin,
					strconv.FormatInt(e.Size, 10),
					sum,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Seq", "Filed", "Name", "Origin", "Bytes", "SHA-256"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&tail, "tail", "n", 0, "Show only the last n entries")
	return cmd
}
