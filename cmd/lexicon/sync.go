package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge new lookups and definitions, then re-render the document",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result, err := a.runner.Sync(cmd.Context())
	if err != nil {
		return failWithNotice(cmd, err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Sync complete: %s\n", result.Summary())
	fmt.Fprintf(out, "📘 %d of %d words learned (%d%%)\n",
		result.Progress.Learned, result.Progress.Total, result.Progress.Percent())
	fmt.Fprintf(out, "Document: %s\n", result.DocumentPath)
	if result.BackupError != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️ Backup failed: %s\n", result.BackupError)
	}
	return nil
}
