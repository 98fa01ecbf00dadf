package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/dylondark/cob-zippy-ai/internal/storage"
)

func TestIngestHandler(t *testing.T) {
	pipeline, docRepo, chunkRepo, vs, pagesDir := newPipelineFixture(t)

	content := "URL: https://example.edu/advising\nUPDATED: 2025-08-20\n\nOpen Mon-Fri 9am-5pm.\n"
	if err := os.WriteFile(filepath.Join(pagesDir, "advising_hours.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	docRepo.EXPECT().GetBySource(gomock.Any(), "https://example.edu/advising").Return(nil, storage.ErrNotFound)
	docRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	chunkRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	vs.EXPECT().Upsert(gomock.Any(), "cob_docs", gomock.Any()).Return(nil)

	rec := postJSON(t, NewIngestHandler(pipeline), "/api/ingest", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK || resp.ChunksIndexed != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestIngestHandlerEmptyFolder(t *testing.T) {
	pipeline, _, _, _, _ := newPipelineFixture(t)

	rec := postJSON(t, NewIngestHandler(pipeline), "/api/ingest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ChunksIndexed != 0 {
		t.Errorf("chunks_indexed = %d, want 0", resp.ChunksIndexed)
	}
}

func TestStatusHandler(t *testing.T) {
	h := NewStatusHandler("nomic-embed-text", "cob_docs", "/data/kiosk.db")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK || resp.EmbedModel != "nomic-embed-text" || resp.Collection != "cob_docs" {
		t.Errorf("response = %+v", resp)
	}
}
