package engine

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/hyperengineering/lexicon/internal/dictionary"
	"github.com/hyperengineering/lexicon/internal/store"
)

// MaxDictionaryBytes is the largest dictionary file ImportDictionary accepts.
const MaxDictionaryBytes = 1024 << 20

var (
	storeExtensions      = []string{".db", ".sqlite", ".db3"}
	dictionaryExtensions = []string{".csv"}
)

// ImportStore installs an e-reader database. When no store exists yet the
// file is copied in as is. Otherwise its relations replace the upstream
// relations of the existing store and the records are kept. Reports
// whether the upload was merged into an existing store.
func (e *Engine) ImportStore(ctx context.Context, settings Settings, name string, data []byte) (bool, error) {
	log := e.logger.With("action", "import_store", "file", name)

	if err := checkExtension(name, storeExtensions); err != nil {
		return false, err
	}

	// Validate before anything touches the vault.
	upload, err := store.Open(ctx, data, store.WithLabel(name))
	if err != nil {
		log.Error("import rejected", "error", err)
		return false, err
	}
	_, err = upload.LookupEvents(ctx)
	upload.Close()
	if err != nil {
		log.Error("import rejected", "error", err)
		return false, err
	}

	if err := e.host.MkdirAll(settings.AssetsFolder); err != nil {
		return false, err
	}

	exists, err := e.host.Exists(settings.StorePath())
	if err != nil {
		return false, err
	}
	if !exists {
		if err := e.host.WriteBinary(settings.StorePath(), data); err != nil {
			return false, fmt.Errorf("write store: %w", err)
		}
		log.Info("store imported", "bytes", len(data))
		return false, nil
	}

	st, err := e.openPersisted(ctx, settings)
	if err != nil {
		return false, err
	}
	defer st.Close()

	if err := st.ReplaceUpstream(ctx, data); err != nil {
		log.Error("merge failed", "error", err)
		return false, err
	}
	if err := e.savePersisted(ctx, settings, st); err != nil {
		return false, err
	}

	log.Info("store merged", "bytes", len(data))
	return true, nil
}

// ImportDictionary replaces the dictionary file and returns the number of
// entries it holds.
func (e *Engine) ImportDictionary(ctx context.Context, settings Settings, name string, data []byte) (int, error) {
	log := e.logger.With("action", "import_dictionary", "file", name)

	if err := checkExtension(name, dictionaryExtensions); err != nil {
		return 0, err
	}
	if len(data) > MaxDictionaryBytes {
		return 0, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), MaxDictionaryBytes)
	}

	if err := e.host.MkdirAll(settings.AssetsFolder); err != nil {
		return 0, err
	}
	if err := e.host.WriteBinary(settings.DictionaryPath(), data); err != nil {
		return 0, fmt.Errorf("write dictionary: %w", err)
	}

	entries := len(dictionary.Parse(string(data)))
	log.Info("dictionary imported", "bytes", len(data), "entries", entries)
	return entries, nil
}

func checkExtension(name string, allowed []string) error {
	ext := strings.ToLower(path.Ext(name))
	if !slices.Contains(allowed, ext) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFile, name, strings.Join(allowed, ", "))
	}
	return nil
}
