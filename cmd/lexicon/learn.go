package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lexicon/internal/validation"
)

var noRender bool

var learnCmd = &cobra.Command{
	Use:   "learn <word>...",
	Short: "Mark words as learned",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetLearned(cmd, args, true)
	},
}

var unlearnCmd = &cobra.Command{
	Use:   "unlearn <word>...",
	Short: "Mark words as not learned",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetLearned(cmd, args, false)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [document]",
	Short: "Write the learned checkboxes of a document back to the store",
	Long: "Read an edited copy of the rendered document and apply its learned " +
		"checkboxes to the store. Without an argument the document in the vault is used; " +
		"\"-\" reads from stdin.",
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	for _, c := range []*cobra.Command{learnCmd, unlearnCmd, applyCmd} {
		c.Flags().BoolVar(&noRender, "no-render", false,
			"Do not re-render the document afterwards")
	}
}

func runSetLearned(cmd *cobra.Command, words []string, learned bool) error {
	var c validation.Collector
	for _, w := range words {
		validation.ValidateWord(&c, w)
	}
	if c.HasErrors() {
		errs := c.Errors()
		return fmt.Errorf("invalid word: %s %s", errs[0].Field, errs[0].Message)
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	state := "learned"
	if !learned {
		state = "not learned"
	}
	for _, w := range words {
		if err := a.runner.ApplyEdit(cmd.Context(), w, learned); err != nil {
			return failWithNotice(cmd, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s marked %s\n", w, state)
	}

	return rerender(cmd, a)
}

func runApply(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var doc string
	if len(args) == 1 {
		data, err := readInput(cmd, args[0])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("document %s not found", args[0])
			}
			return err
		}
		doc = string(data)
	} else {
		doc, err = a.runner.Document(cmd.Context())
		if err != nil {
			return failWithNotice(cmd, err)
		}
	}

	changed, err := a.runner.ApplyDocument(cmd.Context(), doc)
	if err != nil {
		return failWithNotice(cmd, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d records updated\n", changed)

	if changed == 0 {
		return nil
	}
	return rerender(cmd, a)
}

// rerender refreshes the vault document unless --no-render was given.
func rerender(cmd *cobra.Command, a *app) error {
	if noRender {
		return nil
	}
	if _, err := a.runner.Render(cmd.Context()); err != nil {
		return failWithNotice(cmd, err)
	}
	return nil
}
