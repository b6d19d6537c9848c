package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/lexicon/internal/backup"
	"github.com/hyperengineering/lexicon/internal/engine"
	"github.com/hyperengineering/lexicon/internal/render"
	"github.com/hyperengineering/lexicon/internal/types"
	"github.com/hyperengineering/lexicon/internal/validation"
)

// maxUploadBytes bounds multipart uploads; the dictionary is the largest file.
const maxUploadBytes = engine.MaxDictionaryBytes + 1<<20

// Service is the vocabulary runner the handlers drive.
// *engine.Runner satisfies it.
type Service interface {
	Sync(ctx context.Context) (*types.SyncResult, error)
	ApplyEdit(ctx context.Context, word string, learned bool) error
	ApplyDocument(ctx context.Context, doc string) (int, error)
	Document(ctx context.Context) (string, error)
	Render(ctx context.Context) (string, error)
	Records(ctx context.Context) ([]types.Record, types.Progress, error)
	Record(ctx context.Context, word string) (*types.Record, error)
	ImportStore(ctx context.Context, name string, data []byte) (bool, error)
	ImportDictionary(ctx context.Context, name string, data []byte) (int, error)
}

// Handler implements the API handlers
type Handler struct {
	service Service
	backup  backup.Uploader
	apiKey  string
	version string
}

// NewHandler creates a new Handler. A nil uploader disables the backup
// endpoint.
func NewHandler(s Service, u backup.Uploader, apiKey, version string) *Handler {
	if u == nil {
		u = &backup.NoopUploader{}
	}
	return &Handler{
		service: s,
		backup:  u,
		apiKey:  apiKey,
		version: version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "api", "error", err)
	}
}

func writeMarkdown(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, doc)
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:  "healthy",
		Version: h.version,
	})
}

// Sync handles POST /api/v1/sync
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sync(r.Context())
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Document handles GET /api/v1/document
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Document(r.Context())
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeMarkdown(w, doc)
}

// ApplyDocument handles PUT /api/v1/document. The body is an edited copy
// of the rendered document; its learned toggles are written to the store.
func (h *Handler) ApplyDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err))
		return
	}
	changed, err := h.service.ApplyDocument(r.Context(), string(body))
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"changed": changed})
}

// Render handles POST /api/v1/document/render
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Render(r.Context())
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeMarkdown(w, doc)
}

// Words handles GET /api/v1/words. The optional sort query parameter
// overrides the configured order.
func (h *Handler) Words(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")
	var c validation.Collector
	validation.ValidateSortOrder(&c, sort)
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	records, progress, err := h.service.Records(r.Context())
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	if sort != "" {
		records = render.Sort(records, types.SortOrder(sort))
	}
	if records == nil {
		records = []types.Record{}
	}

	writeJSON(w, http.StatusOK, types.WordsResponse{
		Words:    records,
		Progress: progress,
		Percent:  progress.Percent(),
	})
}

// Word handles GET /api/v1/words/{word}
func (h *Handler) Word(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	var c validation.Collector
	validation.ValidateWord(&c, word)
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	rec, err := h.service.Record(r.Context(), word)
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// SetLearned handles PUT /api/v1/words/{word}/learned
func (h *Handler) SetLearned(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	var req types.LearnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}
	if errs := validation.ValidateLearnedRequest(word, &req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	if err := h.service.ApplyEdit(r.Context(), word, *req.Learned); err != nil {
		MapEngineError(w, r, err)
		return
	}
	rec, err := h.service.Record(r.Context(), word)
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// readUpload returns the name and content of the "file" form field.
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteProblem(w, r, http.StatusRequestEntityTooLarge, engine.Notice(engine.ErrFileTooLarge))
		return
	}
	WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %s", err))
}

// ImportStore handles POST /api/v1/imports/store
func (h *Handler) ImportStore(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}
	merged, err := h.service.ImportStore(r.Context(), name, data)
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"file": name, "merged": merged})
}

// ImportDictionary handles POST /api/v1/imports/dictionary
func (h *Handler) ImportDictionary(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}
	entries, err := h.service.ImportDictionary(r.Context(), name, data)
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"file": name, "entries": entries})
}

// BackupURLResponse carries a pre-signed download link for the latest backup.
type BackupURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Backup handles GET /api/v1/backup
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	url, expiry, err := h.backup.PresignedURL(r.Context())
	if err != nil {
		MapEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BackupURLResponse{URL: url, ExpiresAt: expiry})
}
