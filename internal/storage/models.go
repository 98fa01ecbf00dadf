package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRecord represents an ingested source text in the database.
// Source is the stable document identifier: the URL when the document has
// one, otherwise its title.
type DocumentRecord struct {
	ID        string // UUID
	Source    string // Stable identifier (url, else title)
	Title     string
	URL       string
	UpdatedAt string // Date string, YYYY-MM-DD
	Hash      string // SHA256 hex string of the document body
}

// ChunkRecord represents a chunk of document text, indexed for vector search.
// The ID doubles as the Qdrant point ID.
type ChunkRecord struct {
	ID         string // UUID (same as Qdrant point ID)
	DocumentID string // Foreign key to documents.id
	ChunkIndex int    // Index within document (starts at 0)
	Text       string // Chunk text content
}
