package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/lexicon/internal/backup"
	"github.com/hyperengineering/lexicon/internal/engine"
	"github.com/hyperengineering/lexicon/internal/store"
	"github.com/hyperengineering/lexicon/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusUnauthorized:          {"https://lexicon.dev/errors/unauthorized", "Unauthorized"},
	http.StatusBadRequest:            {"https://lexicon.dev/errors/bad-request", "Bad Request"},
	http.StatusNotFound:              {"https://lexicon.dev/errors/not-found", "Not Found"},
	http.StatusConflict:              {"https://lexicon.dev/errors/conflict", "Conflict"},
	http.StatusRequestEntityTooLarge: {"https://lexicon.dev/errors/too-large", "Payload Too Large"},
	http.StatusUnsupportedMediaType:  {"https://lexicon.dev/errors/unsupported-file", "Unsupported File"},
	http.StatusUnprocessableEntity:   {"https://lexicon.dev/errors/validation-error", "Validation Error"},
	http.StatusInternalServerError:   {"https://lexicon.dev/errors/internal-error", "Internal Server Error"},
}

func lookupProblemType(status int) problemType {
	if pt, ok := problemTypes[status]; ok {
		return pt
	}
	return problemType{typeURI: "https://lexicon.dev/errors/unknown", title: http.StatusText(status)}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt := lookupProblemType(status)
	writeProblemJSON(w, status, Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 400 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	pt := lookupProblemType(http.StatusBadRequest)
	writeProblemJSON(w, http.StatusBadRequest, ProblemWithErrors{
		Problem: Problem{
			Type:     pt.typeURI,
			Title:    pt.title,
			Status:   http.StatusBadRequest,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	})
}

func writeProblemJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "component", "api", "error", err)
	}
}

// MapEngineError converts domain errors to Problem Details responses.
// The detail is the short user notice; the full error stays in the log.
func MapEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrUnknownWord):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrMissingSource):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrEmptyResult), errors.Is(err, store.ErrCorruptStore):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnsupportedFile):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, engine.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, backup.ErrNotConfigured):
		WriteProblem(w, r, http.StatusNotFound, "Backup storage is not configured")
		return
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"component", "api",
			"path", r.URL.Path,
			"request_id", getRequestID(r.Context()),
			"error", err,
		)
	}
	WriteProblem(w, r, status, engine.Notice(err))
}
