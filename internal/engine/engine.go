// Package engine runs vocabulary syncs and applies learned edits against
// the files of a vault.
//
// A sync run moves through LoadingStore, ReconcilingLookups,
// AugmentingDictionary, Rendering and Persisting. A failure before
// Persisting leaves every file untouched. The engine holds no locks;
// callers serialize runs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/lexicon/internal/dictionary"
	"github.com/hyperengineering/lexicon/internal/reconcile"
	"github.com/hyperengineering/lexicon/internal/render"
	"github.com/hyperengineering/lexicon/internal/store"
	"github.com/hyperengineering/lexicon/internal/types"
	"github.com/hyperengineering/lexicon/internal/vault"
)

// Uploader copies a persisted store image off-site.
type Uploader interface {
	Upload(ctx context.Context, runID string, image []byte) error
}

// Engine runs sync and edit operations over a vault.
type Engine struct {
	host   vault.Host
	logger *slog.Logger
	backup Uploader
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBackup uploads the store image after every successful sync.
func WithBackup(u Uploader) Option {
	return func(e *Engine) {
		e.backup = u
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine over host.
func New(host vault.Host, opts ...Option) *Engine {
	e := &Engine{
		host:   host,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Sync merges lookups and dictionary definitions into the store image,
// renders the document and persists both.
func (e *Engine) Sync(ctx context.Context, settings Settings) (*types.SyncResult, error) {
	runID := ulid.Make().String()
	log := e.logger.With("action", "sync", "run_id", runID)
	log.Info("sync started", "store", settings.StorePath())

	result := &types.SyncResult{
		RunID:        runID,
		DocumentPath: settings.DocumentPath(),
	}

	// LoadingStore
	log.Debug("sync stage", "stage", StageLoadingStore)
	image, err := e.readSource(settings.StorePath())
	if err != nil {
		return nil, e.abort(log, StageLoadingStore, err)
	}
	dictText, hasDict, err := e.readDictionary(settings)
	if err != nil {
		return nil, e.abort(log, StageLoadingStore, err)
	}

	st, err := store.Open(ctx, image, store.WithLabel(settings.StorePath()))
	if err != nil {
		return nil, e.abort(log, StageLoadingStore, err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		return nil, e.abort(log, StageLoadingStore, err)
	}
	events, err := st.LookupEvents(ctx)
	if err != nil {
		return nil, e.abort(log, StageLoadingStore, err)
	}
	if !hasWord(events) {
		return nil, e.abort(log, StageLoadingStore, ErrEmptyResult)
	}
	result.Lookups = len(events)

	// ReconcilingLookups
	log.Debug("sync stage", "stage", StageReconcilingLookups)
	rec := reconcile.New(st, log)
	result.NewWords, err = rec.Reconcile(ctx, events)
	if err != nil {
		return nil, e.abort(log, StageReconcilingLookups, err)
	}

	// AugmentingDictionary
	if hasDict {
		log.Debug("sync stage", "stage", StageAugmentingDictionary)
		result.Definitions, err = rec.Augment(ctx, dictionary.Entries(dictText))
		if err != nil {
			return nil, e.abort(log, StageAugmentingDictionary, err)
		}
	} else {
		log.Info("dictionary not found, skipping augmentation", "dictionary", settings.DictionaryPath())
	}

	// Rendering
	log.Debug("sync stage", "stage", StageRendering)
	records, err := st.AllRecords(ctx, settings.SortOrder)
	if err != nil {
		return nil, e.abort(log, StageRendering, err)
	}
	doc := render.Render(records, settings.SortOrder)
	result.Progress = types.ProgressOf(records)

	// Persisting
	log.Debug("sync stage", "stage", StagePersisting)
	updated, err := st.Export(ctx)
	if err != nil {
		return nil, e.abort(log, StagePersisting, err)
	}
	if err := e.persist(settings, updated, doc); err != nil {
		return nil, e.abort(log, StagePersisting, err)
	}

	if e.backup != nil {
		if err := e.backup.Upload(ctx, runID, updated); err != nil {
			log.Warn("backup upload failed", "error", err)
			result.BackupError = err.Error()
		}
	}

	result.CompletedAt = e.now().UTC()
	log.Info("sync complete",
		"new_words", result.NewWords,
		"lookups", result.Lookups,
		"definitions", result.Definitions,
		"learned", result.Progress.Learned,
		"total", result.Progress.Total,
	)

	return result, nil
}

// abort logs a failed stage and wraps err in a StageError.
func (e *Engine) abort(log *slog.Logger, stage Stage, err error) error {
	log.Error("sync aborted", "stage", stage, "error", err)
	return &StageError{Stage: stage, Err: err}
}

// readSource reads a required vault file.
func (e *Engine) readSource(path string) ([]byte, error) {
	ok, err := e.host.Exists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	return e.host.ReadBinary(path)
}

// readDictionary reads the dictionary file. A missing file is an error
// unless settings allow it.
func (e *Engine) readDictionary(settings Settings) (string, bool, error) {
	path := settings.DictionaryPath()
	text, err := e.readSource(path)
	if errors.Is(err, ErrMissingSource) && settings.DictionaryOptional {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(text), true, nil
}

// persist writes the store image first, then the document.
func (e *Engine) persist(settings Settings, image []byte, doc string) error {
	if err := e.host.WriteBinary(settings.StorePath(), image); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := e.host.MkdirAll(settings.MarkdownFolder); err != nil {
		return err
	}
	if err := e.host.WriteText(settings.DocumentPath(), doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func hasWord(events []types.LookupEvent) bool {
	for _, ev := range events {
		if ev.Word != "" {
			return true
		}
	}
	return false
}
