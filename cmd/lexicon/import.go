package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy source files into the vault",
}

var importStoreCmd = &cobra.Command{
	Use:   "store <file>",
	Short: "Import a Kindle vocab.db",
	Long: "Import a vocabulary database exported from a Kindle. If the vault already " +
		"holds a store, the upload's lookup tables replace the old ones and learned " +
		"flags are kept.",
	Args: cobra.ExactArgs(1),
	RunE: runImportStore,
}

var importDictionaryCmd = &cobra.Command{
	Use:   "dictionary <file>",
	Short: "Import a word,definition CSV dictionary",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportDictionary,
}

func init() {
	importCmd.AddCommand(importStoreCmd)
	importCmd.AddCommand(importDictionaryCmd)
}

func runImportStore(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	merged, err := a.runner.ImportStore(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return failWithNotice(cmd, err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"path":   a.runner.Settings().StorePath(),
			"merged": merged,
		})
	}
	verb := "Imported"
	if merged {
		verb = "Merged"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %s into %s\n", verb, filepath.Base(args[0]), a.runner.Settings().StorePath())
	return nil
}

func runImportDictionary(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	entries, err := a.runner.ImportDictionary(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return failWithNotice(cmd, err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"path":    a.runner.Settings().DictionaryPath(),
			"entries": entries,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d dictionary entries into %s\n", entries, a.runner.Settings().DictionaryPath())
	return nil
}
