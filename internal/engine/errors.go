package engine

import (
	"errors"
	"fmt"

	"github.com/hyperengineering/lexicon/internal/store"
)

var (
	// ErrMissingSource is returned when the lookup store or the dictionary
	// file is absent. Nothing is written.
	ErrMissingSource = errors.New("missing source file")
	// ErrEmptyResult is returned when the lookup store holds no lookups.
	// Nothing is written.
	ErrEmptyResult = errors.New("no lookups found")
	// ErrUnsupportedFile is returned when an imported file has the wrong
	// extension.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when an imported file exceeds its size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Stage names a step of a sync run.
type Stage string

const (
	StageLoadingStore         Stage = "loading_store"
	StageReconcilingLookups   Stage = "reconciling_lookups"
	StageAugmentingDictionary Stage = "augmenting_dictionary"
	StageRendering            Stage = "rendering"
	StagePersisting           Stage = "persisting"
)

// StageError records the stage at which a sync run was aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Notice returns the short message shown to a user for err. Full detail
// belongs in the log.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingSource):
		return "❌ Vocabulary database or dictionary file not found."
	case errors.Is(err, store.ErrCorruptStore):
		return "❌ Vocabulary database could not be read."
	case errors.Is(err, ErrEmptyResult):
		return "⚠️ No data to sync."
	case errors.Is(err, store.ErrUnknownWord):
		return "❌ Word not found in vocabulary."
	case errors.Is(err, ErrUnsupportedFile):
		return "❌ Unsupported file type."
	case errors.Is(err, ErrFileTooLarge):
		return "❌ File is too large."
	default:
		return "❌ Operation failed. Check the log for details."
	}
}
