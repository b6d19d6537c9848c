// Package reconcile merges lookup events and dictionary entries into a
// record store.
package reconcile

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/hyperengineering/lexicon/internal/types"
)

// Target is the subset of the record store the reconciler writes to.
type Target interface {
	Exists(ctx context.Context, word string) (bool, error)
	UpsertIfAbsent(ctx context.Context, word, usage, sourceTitle string) (bool, error)
	AugmentDefinition(ctx context.Context, word, definition string) error
}

// Reconciler upserts lookup events and augments definitions.
type Reconciler struct {
	target Target
	logger *slog.Logger
}

// New creates a Reconciler writing to target.
func New(target Target, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		target: target,
		logger: logger.With("component", "reconcile"),
	}
}

// Reconcile creates a record for every word seen in events that the target
// does not already hold. Events with an empty word are skipped. Returns the
// number of records created.
func (r *Reconciler) Reconcile(ctx context.Context, events []types.LookupEvent) (int, error) {
	var created, skipped int
	for _, ev := range events {
		if ev.Word == "" {
			skipped++
			continue
		}
		ok, err := r.target.UpsertIfAbsent(ctx, ev.Word, ev.Context, ev.SourceTitle)
		if err != nil {
			return created, fmt.Errorf("upsert %q: %w", ev.Word, err)
		}
		if ok {
			created++
		}
	}

	r.logger.Debug("lookups reconciled",
		"action", "reconcile",
		"events", len(events),
		"created", created,
		"skipped", skipped,
	)

	return created, nil
}

// Augment overwrites the definition of every held word with its dictionary
// entry. Entries apply in sequence order, so the last entry for a word wins.
// Entries for words the target does not hold are ignored. Returns the number
// of entries that matched a record.
func (r *Reconciler) Augment(ctx context.Context, entries iter.Seq[types.DictionaryEntry]) (int, error) {
	var matched, total int
	for e := range entries {
		total++
		if e.Word == "" {
			continue
		}
		ok, err := r.target.Exists(ctx, e.Word)
		if err != nil {
			return matched, fmt.Errorf("check %q: %w", e.Word, err)
		}
		if !ok {
			continue
		}
		if err := r.target.AugmentDefinition(ctx, e.Word, e.Definition); err != nil {
			return matched, fmt.Errorf("augment %q: %w", e.Word, err)
		}
		matched++
	}

	r.logger.Debug("definitions augmented",
		"action", "augment",
		"entries", total,
		"matched", matched,
	)

	return matched, nil
}
