package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/lexicon/internal/render"
	"github.com/hyperengineering/lexicon/internal/types"
)

const previewLength = 48

var (
	listSort          string
	listUnlearnedOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List words in the store",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "",
		"Sort order: timestamp or unlearned (default from config)")
	listCmd.Flags().BoolVar(&listUnlearnedOnly, "unlearned", false,
		"Only list words not yet learned")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	records, progress, err := a.runner.Records(cmd.Context())
	if err != nil {
		return failWithNotice(cmd, err)
	}
	if listSort != "" {
		order, err := types.ParseSortOrder(listSort)
		if err != nil {
			return err
		}
		records = render.Sort(records, order)
	}
	if listUnlearnedOnly {
		records = unlearned(records)
	}

	if jsonOutput {
		if records == nil {
			records = []types.Record{}
		}
		return printJSON(cmd.OutOrStdout(), types.WordsResponse{
			Words:    records,
			Progress: progress,
			Percent:  progress.Percent(),
		})
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No words found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "WORD\tLEARNED\tBOOK\tDEFINITION")
	for _, r := range records {
		learned := "no"
		if r.Learned {
			learned = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.Word,
			learned,
			orDash(r.SourceTitle),
			orDash(preview(r.Definition)),
		)
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d words learned (%d%%)\n",
		progress.Learned, progress.Total, progress.Percent())
	return nil
}

func unlearned(records []types.Record) []types.Record {
	var out []types.Record
	for _, r := range records {
		if !r.Learned {
			out = append(out, r)
		}
	}
	return out
}

// preview flattens a definition, which may carry dictionary markup, to a
// single line of at most previewLength runes.
func preview(definition string) string {
	text := strings.Join(strings.Fields(html2text.HTML2Text(definition)), " ")
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
