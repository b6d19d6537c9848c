package types

import (
	"fmt"
	"math"
	"time"
)

// SortOrder selects how records are ordered in the rendered document.
type SortOrder string

const (
	// SortTimestamp orders newest lookups first.
	SortTimestamp SortOrder = "timestamp"
	// SortUnlearned puts unlearned words first, newest first within each group.
	SortUnlearned SortOrder = "unlearned"
)

// ParseSortOrder validates a configured sort order.
// An empty string selects SortTimestamp.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", SortTimestamp:
		return SortTimestamp, nil
	case SortUnlearned:
		return SortUnlearned, nil
	default:
		return "", fmt.Errorf("invalid sort order %q: must be %q or %q", s, SortTimestamp, SortUnlearned)
	}
}

// Record is a single vocabulary entry in the store.
type Record struct {
	Word        string `json:"word"`
	Definition  string `json:"definition"`
	Context     string `json:"context"`
	SourceTitle string `json:"source_title"`
	Learned     bool   `json:"learned"`
	// Seq is the creation sequence; higher values were created later.
	Seq int64 `json:"-"`
}

// LookupEvent is a raw lookup fact read from the e-reader database.
type LookupEvent struct {
	Word        string
	Context     string
	SourceTitle string
}

// DictionaryEntry is a (word, definition) row from a dictionary file.
type DictionaryEntry struct {
	Word       string
	Definition string
}

// Progress summarizes how many records are learned.
type Progress struct {
	Learned int `json:"learned"`
	Total   int `json:"total"`
}

// Percent returns the rounded learned percentage, or 0 for an empty store.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Learned) / float64(p.Total) * 100))
}

// ProgressOf counts learned records.
func ProgressOf(records []Record) Progress {
	p := Progress{Total: len(records)}
	for _, r := range records {
		if r.Learned {
			p.Learned++
		}
	}
	return p
}

// SyncResult reports the outcome of a completed sync run.
type SyncResult struct {
	RunID        string    `json:"run_id"`
	NewWords     int       `json:"new_words"`
	Lookups      int       `json:"lookups"`
	Definitions  int       `json:"definitions"`
	Progress     Progress  `json:"progress"`
	DocumentPath string    `json:"document_path"`
	BackupError  string    `json:"backup_error,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Summary returns the short human-readable line shown after a sync.
func (r *SyncResult) Summary() string {
	noun := "words"
	if r.NewWords == 1 {
		noun = "word"
	}
	return fmt.Sprintf("%d new %s added", r.NewWords, noun)
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// LearnedRequest is the body of a learned-flag update.
type LearnedRequest struct {
	Learned *bool `json:"learned"`
}

// WordsResponse lists records with aggregate progress.
type WordsResponse struct {
	Words    []Record `json:"words"`
	Progress Progress `json:"progress"`
	Percent  int      `json:"percent"`
}
