package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderStdout bool

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Re-render the document from the store without syncing",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderStdout, "stdout", false,
		"Also print the rendered document")
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	doc, err := a.runner.Render(cmd.Context())
	if err != nil {
		return failWithNotice(cmd, err)
	}

	if renderStdout {
		fmt.Fprint(cmd.OutOrStdout(), doc)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Document: %s\n", a.runner.Settings().DocumentPath())
	return nil
}
