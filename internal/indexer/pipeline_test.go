package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/dylondark/cob-zippy-ai/internal/llm"
	"github.com/dylondark/cob-zippy-ai/internal/storage"
	storagemocks "github.com/dylondark/cob-zippy-ai/internal/storage/mocks"
	"github.com/dylondark/cob-zippy-ai/internal/vectorstore"
	vsmocks "github.com/dylondark/cob-zippy-ai/internal/vectorstore/mocks"
)

// newTestEmbedder serves a fixed 3-float embedding for every request.
func newTestEmbedder(t *testing.T) *llm.EmbeddingsClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float64{0.1, 0.2, 0.3},
		})
	}))
	t.Cleanup(srv.Close)
	return llm.NewEmbeddingsClient(srv.URL, "nomic-embed-text", 3, 5*time.Second)
}

func newTestPipeline(t *testing.T) (*Pipeline, *storagemocks.MockDocumentStore, *storagemocks.MockChunkStore, *vsmocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	docRepo := storagemocks.NewMockDocumentStore(ctrl)
	chunkRepo := storagemocks.NewMockChunkStore(ctrl)
	vs := vsmocks.NewMockVectorStore(ctrl)

	p := NewPipeline(docRepo, chunkRepo, newTestEmbedder(t), vs, "cob_docs", t.TempDir(), 40, 10)
	return p, docRepo, chunkRepo, vs
}

func TestUpsertDocumentNewPage(t *testing.T) {
	p, docRepo, chunkRepo, vs := newTestPipeline(t)
	ctx := context.Background()

	page := &Page{
		Title:     "Advising Hours",
		URL:       "https://example.edu/advising",
		UpdatedAt: "2025-08-20",
		Body:      strings.Repeat("Open Mon-Fri 9am-5pm. ", 5),
	}

	docRepo.EXPECT().GetBySource(gomock.Any(), page.URL).Return(nil, storage.ErrNotFound)
	docRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, doc *storage.DocumentRecord) error {
			if doc.Source != page.URL {
				t.Errorf("document source = %q, want the URL", doc.Source)
			}
			if doc.Title != page.Title || doc.Hash == "" {
				t.Errorf("document record incomplete: %+v", doc)
			}
			return nil
		})

	var inserted []*storage.ChunkRecord
	chunkRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c *storage.ChunkRecord) error {
			inserted = append(inserted, c)
			return nil
		}).AnyTimes()

	vs.EXPECT().Upsert(gomock.Any(), "cob_docs", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			if len(points) != len(inserted) {
				t.Errorf("points = %d, chunks = %d", len(points), len(inserted))
			}
			for i, pt := range points {
				if pt.Meta["source"] != page.URL {
					t.Errorf("point %d source = %v", i, pt.Meta["source"])
				}
				if pt.Meta["chunk_index"] != i {
					t.Errorf("point %d chunk_index = %v", i, pt.Meta["chunk_index"])
				}
			}
			return nil
		})

	n, err := p.UpsertDocument(ctx, page)
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if n < 2 {
		t.Errorf("chunks written = %d, want multiple for a long body", n)
	}
	if n != len(inserted) {
		t.Errorf("returned %d, inserted %d", n, len(inserted))
	}
	for i, c := range inserted {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
	}
}

func TestUpsertDocumentUnchangedHashSkips(t *testing.T) {
	p, docRepo, _, _ := newTestPipeline(t)
	ctx := context.Background()

	page := &Page{Title: "Parking", Body: "Visitor parking is in lot 14."}

	hash := sha256.Sum256([]byte(page.Body))
	existing := &storage.DocumentRecord{
		ID:     "doc-1",
		Source: "Parking",
		Title:  "Parking",
		Hash:   fmt.Sprintf("%x", hash),
	}
	docRepo.EXPECT().GetBySource(gomock.Any(), "Parking").Return(existing, nil)

	n, err := p.UpsertDocument(ctx, page)
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if n != 0 {
		t.Errorf("unchanged page wrote %d chunks, want 0", n)
	}
}

func TestUpsertDocumentReplacesOldChunks(t *testing.T) {
	p, docRepo, chunkRepo, vs := newTestPipeline(t)
	ctx := context.Background()

	existing := &storage.DocumentRecord{
		ID:     "doc-1",
		Source: "Dean Office",
		Title:  "Dean Office",
		Hash:   "stale",
	}
	docRepo.EXPECT().GetBySource(gomock.Any(), "Dean Office").Return(existing, nil)
	docRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, doc *storage.DocumentRecord) error {
			if doc.ID != "doc-1" {
				t.Errorf("re-ingest changed document ID to %q", doc.ID)
			}
			return nil
		})

	oldIDs := []string{"chunk-a", "chunk-b"}
	chunkRepo.EXPECT().ListIDsByDocument(gomock.Any(), "doc-1").Return(oldIDs, nil)
	vs.EXPECT().Delete(gomock.Any(), "cob_docs", oldIDs).Return(nil)
	chunkRepo.EXPECT().DeleteByDocument(gomock.Any(), "doc-1").Return(nil)

	chunkRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	vs.EXPECT().Upsert(gomock.Any(), "cob_docs", gomock.Any()).Return(nil)

	page := &Page{Title: "Dean Office", Body: "Located on the third floor of BCCE."}
	n, err := p.UpsertDocument(ctx, page)
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if n != 1 {
		t.Errorf("chunks written = %d, want 1", n)
	}
}

func TestUpsertDocumentDefaultsUpdatedAt(t *testing.T) {
	p, docRepo, chunkRepo, vs := newTestPipeline(t)
	ctx := context.Background()

	// A page file without an UPDATED header parses with an empty stamp.
	path := writePage(t, t.TempDir(), "tutoring_center.txt", "Tutoring is free for all students.\n")
	page, err := ParsePageFile(path)
	if err != nil {
		t.Fatalf("ParsePageFile: %v", err)
	}
	if page.UpdatedAt != "" {
		t.Fatalf("fixture should have no freshness stamp, got %q", page.UpdatedAt)
	}

	today := time.Now().Format("2006-01-02")

	docRepo.EXPECT().GetBySource(gomock.Any(), "Tutoring Center").Return(nil, storage.ErrNotFound)
	docRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, doc *storage.DocumentRecord) error {
			if doc.UpdatedAt != today {
				t.Errorf("document updated_at = %q, want today %q", doc.UpdatedAt, today)
			}
			return nil
		})
	chunkRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	vs.EXPECT().Upsert(gomock.Any(), "cob_docs", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			for i, pt := range points {
				if pt.Meta["updated_at"] != today {
					t.Errorf("point %d updated_at = %v, want today %q", i, pt.Meta["updated_at"], today)
				}
			}
			return nil
		})

	if _, err := p.UpsertDocument(ctx, page); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
}

func TestUpsertDocumentEmptyBody(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)

	n, err := p.UpsertDocument(context.Background(), &Page{Title: "Blank", Body: "   \n  "})
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if n != 0 {
		t.Errorf("empty body wrote %d chunks, want 0", n)
	}
}

func TestReindexFolderSkipsBadPages(t *testing.T) {
	p, docRepo, chunkRepo, vs := newTestPipeline(t)
	ctx := context.Background()

	writePage(t, p.pagesDir, "advising.txt", "Advising is open Mon-Fri 9am-5pm.\n")
	writePage(t, p.pagesDir, "notes.json", "ignored, wrong extension")
	writePage(t, p.pagesDir, "empty.txt", "\n")

	docRepo.EXPECT().GetBySource(gomock.Any(), "Advising").Return(nil, storage.ErrNotFound)
	docRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	chunkRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	vs.EXPECT().Upsert(gomock.Any(), "cob_docs", gomock.Any()).Return(nil)

	n, err := p.ReindexFolder(ctx)
	if err != nil {
		t.Fatalf("ReindexFolder: %v", err)
	}
	if n != 1 {
		t.Errorf("chunks written = %d, want 1", n)
	}
}

func TestReindexFolderMissingDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := NewPipeline(
		storagemocks.NewMockDocumentStore(ctrl),
		storagemocks.NewMockChunkStore(ctrl),
		newTestEmbedder(t),
		vsmocks.NewMockVectorStore(ctrl),
		"cob_docs", "/nonexistent/pages", 40, 10,
	)
	if _, err := p.ReindexFolder(context.Background()); err == nil {
		t.Fatal("expected error for missing pages directory")
	}
}
