package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// markdownParser is shared by all page parses; goldmark parsers are safe for
// concurrent use.
var markdownParser = goldmark.New()

// ParsePageFile reads a kiosk content page from disk. Pages are plain text or
// markdown with an optional header block:
//
//	URL: https://example.edu/advising
//	UPDATED: 2025-08-20
//
//	body text...
//
// Header lines are recognized at the top of the file until the first blank
// line or the first line that is not a known header. The title comes from the
// first markdown heading for .md files, falling back to the filename with
// underscores as spaces and words capitalized.
func ParsePageFile(path string) (*Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", path, err)
	}

	page := &Page{}
	body := string(content)

	lines := strings.Split(body, "\n")
	consumed := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if value, ok := headerValue(trimmed, "URL:"); ok {
			page.URL = value
			consumed++
			continue
		}
		if value, ok := headerValue(trimmed, "UPDATED:"); ok {
			page.UpdatedAt = value
			consumed++
			continue
		}
		// A blank line closes the header block.
		if trimmed == "" && consumed > 0 {
			consumed++
		}
		break
	}
	page.Body = strings.TrimSpace(strings.Join(lines[consumed:], "\n"))

	page.Title = titleFromFilename(path)
	if strings.EqualFold(filepath.Ext(path), ".md") {
		if heading := firstMarkdownHeading(page.Body); heading != "" {
			page.Title = heading
		}
	}

	return page, nil
}

// headerValue matches a `KEY: value` header line case-insensitively.
func headerValue(line, prefix string) (string, bool) {
	if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

// titleFromFilename derives a display title from the file name: extension
// stripped, underscores and hyphens as spaces, each word capitalized.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// firstMarkdownHeading returns the text of the first heading in the markdown
// body, or "" when the body has none.
func firstMarkdownHeading(body string) string {
	source := []byte(body)
	doc := markdownParser.Parser().Parse(gmtext.NewReader(source))

	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = headingText(h, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return heading
}

// headingText collects the plain text of a heading node.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
