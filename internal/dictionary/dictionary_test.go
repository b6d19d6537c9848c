package dictionary

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperengineering/lexicon/internal/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.DictionaryEntry
	}{
		{
			name: "empty input",
			text: "",
			want: []types.DictionaryEntry{},
		},
		{
			name: "header only",
			text: "word,definition\n",
			want: []types.DictionaryEntry{},
		},
		{
			name: "basic rows",
			text: "word,definition\nephemeral,lasting a short time\ncat,a feline\n",
			want: []types.DictionaryEntry{
				{Word: "ephemeral", Definition: "lasting a short time"},
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "trims whitespace",
			text: "word,definition\n  cat  ,\t a feline \n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "short rows dropped",
			text: "word,definition\nlonely\ncat,a feline\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "extra columns ignored",
			text: "word,definition,pos\ncat,a feline,noun\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "empty rows ignored",
			text: "word,definition\n\ncat,a feline\n\n\ndog,a canine\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
				{Word: "dog", Definition: "a canine"},
			},
		},
		{
			name: "quoted fields with commas and newlines",
			text: "word,definition\ncat,\"a feline, small\"\ndog,\"line one\nline two\"\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline, small"},
				{Word: "dog", Definition: "line one\nline two"},
			},
		},
		{
			name: "crlf line endings",
			text: "word,definition\r\ncat,a feline\r\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "byte order mark stripped",
			text: "\ufeffword,definition\ncat,a feline\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "duplicates kept in order",
			text: "word,definition\ncat,a feline\ncat,domestic animal\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
				{Word: "cat", Definition: "domestic animal"},
			},
		},
		{
			name: "semicolon delimited",
			text: "word;definition\ncat;a feline, small\ndog;a canine\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline, small"},
				{Word: "dog", Definition: "a canine"},
			},
		},
		{
			name: "tab delimited",
			text: "word\tdefinition\r\ncat\ta feline, small\r\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline, small"},
			},
		},
		{
			name: "pipe delimited with byte order mark",
			text: "\ufeffword|definition\ncat|a feline\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
		{
			name: "delimiter tie falls back to comma",
			text: "word,definition;notes\ncat,a feline;small\n",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline;small"},
			},
		},
		{
			name: "no trailing newline",
			text: "word,definition\ncat,a feline",
			want: []types.DictionaryEntry{
				{Word: "cat", Definition: "a feline"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntries_Restartable(t *testing.T) {
	seq := Entries("word,definition\ncat,a feline\ndog,a canine\n")

	var first, second []types.DictionaryEntry
	for e := range seq {
		first = append(first, e)
	}
	for e := range seq {
		second = append(second, e)
	}

	if len(first) != 2 {
		t.Fatalf("first pass got %d entries, want 2", len(first))
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass differs (-first +second):\n%s", diff)
	}
}

func TestEntries_StopsEarly(t *testing.T) {
	var got []string
	for e := range Entries("word,definition\na,1\nb,2\nc,3\n") {
		got = append(got, e.Word)
		if e.Word == "b" {
			break
		}
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		text string
		want rune
	}{
		{"", ','},
		{"word,definition\n", ','},
		{"word\tdefinition\n", '\t'},
		{"word|definition|notes\na,b\n", '|'},
		{"word;definition\n", ';'},
		{"\ufeffword;definition", ';'},
		{"word definition\nx;y;z\n", ','},
	}
	for _, tt := range tests {
		if got := sniffDelimiter(tt.text); got != tt.want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
