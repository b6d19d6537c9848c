// Package dictionary parses user-supplied dictionary files into
// (word, definition) entries.
//
// Parsing is best-effort: the first row is a header and is discarded, rows
// with fewer than two fields are dropped, and rows the CSV reader rejects are
// dropped the same way. Neither case is an error.
//
// The delimiter is taken from the header row: whichever of comma, tab, pipe
// or semicolon occurs most often there wins, with ties going to the comma.
package dictionary

import (
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hyperengineering/lexicon/internal/types"
)

// Entries returns a sequence over the dictionary entries in text, in file
// order. Each iteration parses text afresh, so the sequence can be ranged
// over any number of times.
func Entries(text string) iter.Seq[types.DictionaryEntry] {
	return func(yield func(types.DictionaryEntry) bool) {
		r := newReader(text)
		header := true
		for {
			row, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if header {
				header = false
				continue
			}
			if err != nil {
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					continue
				}
				return
			}
			if len(row) < 2 {
				continue
			}
			entry := types.DictionaryEntry{
				Word:       strings.TrimSpace(row[0]),
				Definition: strings.TrimSpace(row[1]),
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Parse collects every entry in text.
func Parse(text string) []types.DictionaryEntry {
	entries := []types.DictionaryEntry{}
	for e := range Entries(text) {
		entries = append(entries, e)
	}
	return entries
}

func newReader(text string) *csv.Reader {
	// UTF8BOM drops a leading byte order mark that spreadsheet exports add.
	src := transform.NewReader(strings.NewReader(text), unicode.UTF8BOM.NewDecoder())
	r := csv.NewReader(src)
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

var delimiters = []rune{',', '\t', '|', ';'}

func sniffDelimiter(text string) rune {
	header, _, _ := strings.Cut(strings.TrimPrefix(text, "\ufeff"), "\n")
	best, most := ',', 0
	for _, d := range delimiters {
		if n := strings.Count(header, string(d)); n > most {
			best, most = d, n
		}
	}
	return best
}
