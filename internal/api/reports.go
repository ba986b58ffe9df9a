// Package api exposes the report lifecycle over HTTP and MCP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/minute/internal/blob"
	"github.com/kalambet/minute/internal/report"
	"github.com/kalambet/minute/internal/storage"
)

// multipartOverhead is headroom on top of the upload ceiling for the
// multipart framing around the file part.
const multipartOverhead = 1 << 20

// Deps holds dependencies for the HTTP handler.
type Deps struct {
	Service        *report.Service
	MaxUploadBytes int64
}

// NewHandler builds the chi router for the report API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Post("/upload", handleUpload(deps))
		r.Post("/generate", handleGenerate(deps))
		r.Get("/", handleList(deps))
		r.Get("/{id}", handleGet(deps))
		r.Post("/{id}/transcribe", handleTranscribe(deps))
		r.Post("/{id}/summarize", handleSummarize(deps))
		r.Get("/{id}/download/pdf", handleDownloadPDF(deps))
		r.Get("/{id}/download/markdown", handleDownloadMarkdown(deps))
		r.Delete("/{id}", handleDelete(deps))
	})

	return r
}

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, ok := createFromUpload(deps, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusCreated, detail)
	}
}

func handleGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, ok := createFromUpload(deps, w, r)
		if !ok {
			return
		}

		language := r.URL.Query().Get("language")
		includeSummary := true
		if v := r.URL.Query().Get("include_summary"); v != "" {
			if parsed, err := strconv.ParseBool(v); err == nil {
				includeSummary = parsed
			}
		}

		processed, err := deps.Service.ProcessComplete(r.Context(), detail.ID, language, includeSummary)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, processed)
	}
}

// createFromUpload reads the multipart "file" field and creates a pending
// report. On failure it writes the error response and returns ok=false.
func createFromUpload(deps Deps, w http.ResponseWriter, r *http.Request) (report.Detail, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, deps.MaxUploadBytes+multipartOverhead)
	defer r.Body.Close()

	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "missing or unreadable file field: %v", err)
		return report.Detail{}, false
	}
	defer file.Close()

	detail, err := deps.Service.Create(r.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return report.Detail{}, false
	}
	return detail, true
}

func handleList(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip := parseIntParam(r, "skip", 0, 0)
		limit := parseIntParam(r, "limit", 100, 1000)

		details, err := deps.Service.List(r.Context(), skip, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if details == nil {
			details = []report.Detail{}
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func handleGet(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reportID(w, r)
		if !ok {
			return
		}
		detail, err := deps.Service.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func handleTranscribe(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reportID(w, r)
		if !ok {
			return
		}
		detail, err := deps.Service.Transcribe(r.Context(), id, r.URL.Query().Get("language"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func handleSummarize(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reportID(w, r)
		if !ok {
			return
		}
		detail, err := deps.Service.Summarize(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func handleDownloadPDF(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reportID(w, r)
		if !ok {
			return
		}
		data, _, err := deps.Service.RenderPDF(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		sendAttachment(w, data, fmt.Sprintf("report_%d.pdf", id), "application/pdf")
	}
}

func handleDownloadMarkdown(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reportID(w, r)
		if !ok {
			return
		}
		data, _, err := deps.Service.RenderMarkdown(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		sendAttachment(w, data, fmt.Sprintf("report_%d.md", id), "text/markdown; charset=utf-8")
	}
}

func handleDelete(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := reportID(w, r)
		if !ok {
			return
		}
		if err := deps.Service.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// reportID parses the {id} path parameter. A non-numeric id is treated the
// same as an unknown one.
func reportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpError(w, http.StatusNotFound, "not_found", "report not found")
		return 0, false
	}
	return id, true
}

// writeServiceError maps orchestrator errors onto the HTTP taxonomy:
// validation and precondition failures are 400, unknown ids 404, and
// adapter/render failures 500 with their message.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *blob.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "report not found")
	case errors.Is(err, report.ErrNotTranscribed):
		httpError(w, http.StatusBadRequest, "precondition_error", "%v", err)
	case errors.As(err, &validationErr):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func sendAttachment(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
