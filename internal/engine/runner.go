package engine

import (
	"context"
	"sync"

	"github.com/hyperengineering/lexicon/internal/types"
)

// Runner binds an Engine to fixed settings and runs one operation at a
// time. Hosts that accept concurrent requests, such as the HTTP server and
// the scheduler, share a Runner.
type Runner struct {
	mu       sync.Mutex
	engine   *Engine
	settings Settings
}

// NewRunner creates a Runner.
func NewRunner(e *Engine, settings Settings) *Runner {
	return &Runner{engine: e, settings: settings}
}

// Settings returns the settings every call uses.
func (r *Runner) Settings() Settings {
	return r.settings
}

// Sync runs a full sync.
func (r *Runner) Sync(ctx context.Context) (*types.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Sync(ctx, r.settings)
}

// ApplyEdit sets the learned flag of word.
func (r *Runner) ApplyEdit(ctx context.Context, word string, learned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ApplyEdit(ctx, r.settings, word, learned)
}

// ApplyDocument applies the toggles in doc.
func (r *Runner) ApplyDocument(ctx context.Context, doc string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ApplyDocument(ctx, r.settings, doc)
}

// Document returns the rendered document in the vault.
func (r *Runner) Document(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ReadDocument(r.settings)
}

// Render re-renders the document from the persisted store.
func (r *Runner) Render(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.RenderDocument(ctx, r.settings)
}

// Records returns all persisted records and progress.
func (r *Runner) Records(ctx context.Context) ([]types.Record, types.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Records(ctx, r.settings)
}

// Record returns the persisted record for word.
func (r *Runner) Record(ctx context.Context, word string) (*types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Record(ctx, r.settings, word)
}

// ImportStore installs an uploaded e-reader database.
func (r *Runner) ImportStore(ctx context.Context, name string, data []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ImportStore(ctx, r.settings, name, data)
}

// ImportDictionary replaces the dictionary file.
func (r *Runner) ImportDictionary(ctx context.Context, name string, data []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ImportDictionary(ctx, r.settings, name, data)
}
