package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/llm"
	"github.com/dylondark/cob-zippy-ai/internal/service"
	"github.com/dylondark/cob-zippy-ai/internal/storage"
	"github.com/dylondark/cob-zippy-ai/internal/vectorstore"
)

// Pipeline orchestrates indexing of kiosk pages into SQLite and Qdrant.
// SQLite owns the chunk text; Qdrant owns the vectors and payload metadata.
type Pipeline struct {
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	embedder    *llm.EmbeddingsClient
	vectorStore vectorstore.VectorStore
	collection  string
	pagesDir    string
	chunkSize   int
	overlap     int
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder *llm.EmbeddingsClient,
	vectorStore vectorstore.VectorStore,
	collection string,
	pagesDir string,
	chunkSize, overlap int,
) *Pipeline {
	return &Pipeline{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		pagesDir:    pagesDir,
		chunkSize:   chunkSize,
		overlap:     overlap,
	}
}

// UpsertDocument indexes one page: it replaces any previous chunks stored
// under the same source key, then chunks, embeds and stores the new body.
// Returns the number of chunks written. An unchanged body (same hash) is
// skipped and returns 0.
func (p *Pipeline) UpsertDocument(ctx context.Context, page *Page) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	body := strings.TrimSpace(page.Body)
	if body == "" {
		logger.WarnContext(ctx, "skipping page with empty body", "title", page.Title)
		return 0, nil
	}

	hash := sha256.Sum256([]byte(body))
	hashHex := fmt.Sprintf("%x", hash)
	source := page.Source()

	// Pages without an UPDATED header are stamped with the ingestion date so
	// citations and prompts never carry an empty freshness field.
	updatedAt := page.UpdatedAt
	if updatedAt == "" {
		updatedAt = time.Now().Format("2006-01-02")
	}

	existing, err := p.docRepo.GetBySource(ctx, source)
	if err != nil && err != storage.ErrNotFound {
		return 0, fmt.Errorf("%w: failed to look up document %q: %v", service.ErrStorage, source, err)
	}

	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged page", "source", source, "hash", hashHex)
		return 0, nil
	}

	docID := uuid.New().String()
	if existing != nil {
		docID = existing.ID
	}

	record := &storage.DocumentRecord{
		ID:        docID,
		Source:    source,
		Title:     page.Title,
		URL:       page.URL,
		UpdatedAt: updatedAt,
		Hash:      hashHex,
	}
	if err := p.docRepo.Upsert(ctx, record); err != nil {
		return 0, fmt.Errorf("%w: failed to upsert document %q: %v", service.ErrStorage, source, err)
	}

	// Remove the previous generation of chunks before writing the new one.
	if existing != nil {
		oldIDs, err := p.chunkRepo.ListIDsByDocument(ctx, docID)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to list old chunks for %q: %v", service.ErrStorage, source, err)
		}
		if len(oldIDs) > 0 {
			if err := p.vectorStore.Delete(ctx, p.collection, oldIDs); err != nil {
				logger.WarnContext(ctx, "failed to delete old vectors, overwriting", "source", source, "count", len(oldIDs), "error", err)
			}
			if err := p.chunkRepo.DeleteByDocument(ctx, docID); err != nil {
				return 0, fmt.Errorf("%w: failed to delete old chunks for %q: %v", service.ErrStorage, source, err)
			}
		}
	}

	texts := ChunkText(body, p.chunkSize, p.overlap)

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed page %q: %w", source, err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("%w: embedding count mismatch for %q: expected %d, got %d",
			service.ErrUpstream, source, len(texts), len(embeddings))
	}

	points := make([]vectorstore.Point, len(texts))
	for i, text := range texts {
		chunkID := uuid.New().String()

		chunk := &storage.ChunkRecord{
			ID:         chunkID,
			DocumentID: docID,
			ChunkIndex: i,
			Text:       text,
		}
		if err := p.chunkRepo.Insert(ctx, chunk); err != nil {
			return 0, fmt.Errorf("%w: failed to insert chunk %d of %q: %v", service.ErrStorage, i, source, err)
		}

		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"doc_id":      docID,
				"title":       page.Title,
				"source":      source,
				"updated_at":  updatedAt,
				"chunk_index": i,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return 0, fmt.Errorf("%w: failed to upsert vectors for %q: %v", service.ErrStorage, source, err)
	}

	logger.InfoContext(ctx, "indexed page", "source", source, "title", page.Title, "chunks", len(texts))
	return len(texts), nil
}

// ReindexFolder scans the pages directory for .txt and .md files and indexes
// each one. File-level errors are logged and skipped so one bad page cannot
// block the rest. Returns the total number of chunks written.
func (p *Pipeline) ReindexFolder(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	entries, err := os.ReadDir(p.pagesDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read pages directory %s: %w", p.pagesDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".txt" || ext == ".md" {
			paths = append(paths, filepath.Join(p.pagesDir, entry.Name()))
		}
	}
	sort.Strings(paths)

	logger.InfoContext(ctx, "starting reindex", "dir", p.pagesDir, "pages", len(paths))

	var totalChunks, errorCount int
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return totalChunks, ctx.Err()
		default:
		}

		page, err := ParsePageFile(path)
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to parse page", "path", path, "error", err)
			continue
		}

		n, err := p.UpsertDocument(ctx, page)
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to index page", "path", path, "error", err)
			continue
		}
		totalChunks += n
	}

	logger.InfoContext(ctx, "reindex completed", "pages", len(paths), "chunks", totalChunks, "errors", errorCount)

	if errorCount > 0 {
		return totalChunks, fmt.Errorf("reindex completed with %d errors", errorCount)
	}
	return totalChunks, nil
}
