package indexer

// Page is one kiosk content page ready for indexing: the display title,
// optional source URL and freshness stamp from the file header, and the
// body text to chunk.
type Page struct {
	Title     string
	URL       string
	UpdatedAt string
	Body      string
}

// Source returns the identity key for the page: the URL when present,
// otherwise the title. Re-ingesting a page with the same key replaces its
// previous chunks.
func (p *Page) Source() string {
	if p.URL != "" {
		return p.URL
	}
	return p.Title
}
