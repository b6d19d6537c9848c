package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/lexicon/internal/render"
	"github.com/hyperengineering/lexicon/internal/store"
	"github.com/hyperengineering/lexicon/internal/types"
)

// openPersisted opens the persisted store image with the record table in
// place.
func (e *Engine) openPersisted(ctx context.Context, settings Settings) (*store.SQLiteStore, error) {
	image, err := e.readSource(settings.StorePath())
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, image, store.WithLabel(settings.StorePath()))
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// savePersisted writes the store image back to the vault.
func (e *Engine) savePersisted(ctx context.Context, settings Settings, st *store.SQLiteStore) error {
	image, err := st.Export(ctx)
	if err != nil {
		return err
	}
	if err := e.host.WriteBinary(settings.StorePath(), image); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// ApplyEdit sets the learned flag of word in the persisted store. The
// document is not re-rendered.
func (e *Engine) ApplyEdit(ctx context.Context, settings Settings, word string, learned bool) error {
	log := e.logger.With("action", "apply_edit", "word", word)

	st, err := e.openPersisted(ctx, settings)
	if err != nil {
		log.Error("edit failed", "error", err)
		return err
	}
	defer st.Close()

	if err := st.SetLearned(ctx, word, learned); err != nil {
		log.Warn("edit rejected", "error", err)
		return err
	}
	if err := e.savePersisted(ctx, settings, st); err != nil {
		log.Error("edit failed", "error", err)
		return err
	}

	log.Info("learned flag updated", "learned", learned)
	return nil
}

// ApplyDocument applies every learned toggle in doc whose state differs
// from the persisted store, in one read-modify-write. Toggles for words
// without a record are skipped. Returns the number of records changed.
func (e *Engine) ApplyDocument(ctx context.Context, settings Settings, doc string) (int, error) {
	log := e.logger.With("action", "apply_document")

	st, err := e.openPersisted(ctx, settings)
	if err != nil {
		log.Error("apply failed", "error", err)
		return 0, err
	}
	defer st.Close()

	controls := render.ParseControls(doc)
	changed := 0
	for _, c := range controls {
		rec, err := st.Record(ctx, c.Word)
		if err != nil {
			log.Warn("toggle skipped", "word", c.Word, "error", err)
			continue
		}
		if rec.Learned == c.Checked {
			continue
		}
		if err := st.SetLearned(ctx, c.Word, c.Checked); err != nil {
			return 0, err
		}
		changed++
	}

	if changed > 0 {
		if err := e.savePersisted(ctx, settings, st); err != nil {
			log.Error("apply failed", "error", err)
			return 0, err
		}
	}

	log.Info("document applied", "controls", len(controls), "changed", changed)
	return changed, nil
}

// ReadDocument returns the rendered document currently in the vault.
func (e *Engine) ReadDocument(settings Settings) (string, error) {
	path := settings.DocumentPath()
	ok, err := e.host.Exists(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	return e.host.ReadText(path)
}

// RenderDocument re-renders the document from the persisted store without
// reconciling, writes it to the vault and returns it.
func (e *Engine) RenderDocument(ctx context.Context, settings Settings) (string, error) {
	records, _, err := e.Records(ctx, settings)
	if err != nil {
		return "", err
	}
	doc := render.Render(records, settings.SortOrder)

	if err := e.host.MkdirAll(settings.MarkdownFolder); err != nil {
		return "", err
	}
	if err := e.host.WriteText(settings.DocumentPath(), doc); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return doc, nil
}

// Records returns the persisted records in the configured order along with
// aggregate progress.
func (e *Engine) Records(ctx context.Context, settings Settings) ([]types.Record, types.Progress, error) {
	st, err := e.openPersisted(ctx, settings)
	if err != nil {
		return nil, types.Progress{}, err
	}
	defer st.Close()

	records, err := st.AllRecords(ctx, settings.SortOrder)
	if err != nil {
		return nil, types.Progress{}, err
	}
	return records, types.ProgressOf(records), nil
}

// Record returns the persisted record for word.
func (e *Engine) Record(ctx context.Context, settings Settings, word string) (*types.Record, error) {
	st, err := e.openPersisted(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.Record(ctx, word)
}
