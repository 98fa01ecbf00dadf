package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/indexer"
	"github.com/dylondark/cob-zippy-ai/internal/storage"
)

// slugPattern collapses anything that is not a lowercase letter or digit.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// DocumentsHandler adds new kiosk pages and lists the indexed ones.
type DocumentsHandler struct {
	pipeline *indexer.Pipeline
	docRepo  storage.DocumentStore
	pagesDir string
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(pipeline *indexer.Pipeline, docRepo storage.DocumentStore, pagesDir string) *DocumentsHandler {
	return &DocumentsHandler{pipeline: pipeline, docRepo: docRepo, pagesDir: pagesDir}
}

// AddDocumentRequest is the JSON body for adding a page.
type AddDocumentRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// AddDocumentResponse is the JSON body after adding a page.
type AddDocumentResponse struct {
	OK            bool   `json:"ok"`
	ChunksWritten int    `json:"chunks_written"`
	File          string `json:"file"`
}

// DocumentInfo is one indexed page in a listing.
type DocumentInfo struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	URL       string `json:"url,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ListDocumentsResponse is the JSON body for page listings.
type ListDocumentsResponse struct {
	OK        bool           `json:"ok"`
	Documents []DocumentInfo `json:"documents"`
}

// ServeHTTP dispatches on method: POST adds a page, GET lists indexed pages.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.add(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// add persists a page file next to the scraped ones and indexes it
// immediately, so a restart reindexes it from disk like any other page.
func (h *DocumentsHandler) add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AddDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if body == "" {
		writeError(w, http.StatusBadRequest, "Body is required")
		return
	}

	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Title must contain letters or digits")
		return
	}

	today := time.Now().Format("2006-01-02")
	filename := slug + ".txt"
	content := fmt.Sprintf("URL: %s\nUPDATED: %s\n\n%s", req.URL, today, body)

	if err := os.MkdirAll(h.pagesDir, 0o755); err != nil {
		logger.ErrorContext(ctx, "failed to create pages directory", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store page")
		return
	}
	if err := os.WriteFile(filepath.Join(h.pagesDir, filename), []byte(content), 0o644); err != nil {
		logger.ErrorContext(ctx, "failed to write page file", "file", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store page")
		return
	}

	page := &indexer.Page{
		Title:     title,
		URL:       strings.TrimSpace(req.URL),
		UpdatedAt: today,
		Body:      body,
	}
	n, err := h.pipeline.UpsertDocument(ctx, page)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "page added", "title", title, "file", filename, "chunks", n)
	writeJSON(w, http.StatusOK, AddDocumentResponse{OK: true, ChunksWritten: n, File: filename})
}

// list returns every indexed page.
func (h *DocumentsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	records, err := h.docRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	docs := make([]DocumentInfo, len(records))
	for i, rec := range records {
		docs[i] = DocumentInfo{
			Title:     rec.Title,
			Source:    rec.Source,
			URL:       rec.URL,
			UpdatedAt: rec.UpdatedAt,
		}
	}

	writeJSON(w, http.StatusOK, ListDocumentsResponse{OK: true, Documents: docs})
}
