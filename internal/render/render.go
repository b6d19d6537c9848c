// Package render turns vocabulary records into the editable markdown
// document and recovers learned toggles from it.
package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperengineering/lexicon/internal/types"
)

const (
	title = "# Recent Lookups"

	// learnedMarker starts the line holding a record's learned toggle.
	learnedMarker = "- **Learned**:"

	// Placeholder is the whole document for a store without records.
	Placeholder = title + "\n\n_(No entries found)_"

	unknownWord = "(unknown)"
	noValue     = "(none)"
)

// Render returns the document for records in the given order. records is
// not modified. Output depends only on its inputs.
func Render(records []types.Record, order types.SortOrder) string {
	if len(records) == 0 {
		return Placeholder
	}

	sorted := Sort(records, order)
	progress := types.ProgressOf(sorted)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📘 You’ve learned %d out of %d words (%d%%)\n\n",
		progress.Learned, progress.Total, progress.Percent())

	for _, rec := range sorted {
		writeRecord(&b, rec)
	}

	return b.String()
}

// Sort returns a copy of records ordered newest first, with unlearned
// records ahead of learned ones for SortUnlearned.
func Sort(records []types.Record, order types.SortOrder) []types.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b types.Record) int {
		if order == types.SortUnlearned && a.Learned != b.Learned {
			if a.Learned {
				return 1
			}
			return -1
		}
		return cmp.Compare(b.Seq, a.Seq)
	})
	return sorted
}

func writeRecord(b *strings.Builder, rec types.Record) {
	word := orDefault(rec.Word, unknownWord)
	checked := ""
	if rec.Learned {
		checked = " checked"
	}

	fmt.Fprintf(b, "## %s\n\n", word)
	fmt.Fprintf(b, "- **Context**: %s\n", orDefault(rec.Context, noValue))
	fmt.Fprintf(b, "- **Book Title**: %s\n", orDefault(rec.SourceTitle, noValue))
	fmt.Fprintf(b, "%s <input type=\"checkbox\" data-word=\"%s\"%s />\n", learnedMarker, html.EscapeString(rec.Word), checked)
	fmt.Fprintf(b, "- **Definition**:\n\n%s\n\n---\n", orDefault(rec.Definition, noValue))
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
