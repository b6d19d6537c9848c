package store

import (
	"context"

	"github.com/hyperengineering/lexicon/internal/types"
)

// Store defines the operations over a vocabulary store image.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, word string) (bool, error)
	UpsertIfAbsent(ctx context.Context, word, usage, sourceTitle string) (bool, error)
	AugmentDefinition(ctx context.Context, word, definition string) error
	SetLearned(ctx context.Context, word string, learned bool) error
	Record(ctx context.Context, word string) (*types.Record, error)
	AllRecords(ctx context.Context, order types.SortOrder) ([]types.Record, error)
	Stats(ctx context.Context) (types.Progress, error)
	LookupEvents(ctx context.Context) ([]types.LookupEvent, error)
	ReplaceUpstream(ctx context.Context, image []byte) error
	Export(ctx context.Context) ([]byte, error)
	Close() error
}
