package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkTextShortInputIsIdentity(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
	}{
		{"shorter than size", "hello world", 100},
		{"exactly size", strings.Repeat("a", 50), 50},
		{"empty text", "", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.size, 5)
			if len(chunks) != 1 {
				t.Fatalf("got %d chunks, want 1", len(chunks))
			}
			if chunks[0] != tt.text {
				t.Errorf("chunk = %q, want input unchanged", chunks[0])
			}
		})
	}
}

func TestChunkTextWindows(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 runes
	size, overlap := 30, 10

	chunks := ChunkText(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want multiple", len(chunks))
	}

	for i, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > size {
			t.Errorf("chunk %d has %d runes, exceeds size %d", i, utf8.RuneCountInString(chunk), size)
		}
	}

	// Consecutive chunks share exactly overlap runes.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-overlap:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the %d-rune tail of chunk %d", i, overlap, i-1)
		}
	}

	// Dropping each chunk's leading overlap reconstructs the input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		rebuilt.WriteString(string(runes[overlap:]))
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reconstruct the original text")
	}

	// The final chunk ends exactly at the end of the text.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("last chunk %q is not a suffix of the input", last)
	}
}

func TestChunkTextMultiByteRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 20)
	chunks := ChunkText(text, 25, 5)

	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d split mid-rune: %q", i, chunk)
		}
		if utf8.RuneCountInString(chunk) > 25 {
			t.Errorf("chunk %d exceeds rune budget", i)
		}
	}
}

func TestChunkTextZeroOverlap(t *testing.T) {
	text := strings.Repeat("x", 95)
	chunks := ChunkText(text, 30, 0)

	if got := strings.Join(chunks, ""); got != text {
		t.Errorf("zero-overlap chunks should concatenate to the input")
	}
	if len(chunks) != 4 {
		t.Errorf("got %d chunks, want 4", len(chunks))
	}
}

func TestChunkTextTerminates(t *testing.T) {
	// Pathological arguments must still finish; the step clamp guarantees
	// forward progress even when overlap >= size.
	chunks := ChunkText(strings.Repeat("y", 40), 10, 10)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if !strings.HasSuffix(strings.Repeat("y", 40), chunks[len(chunks)-1]) {
		t.Error("last chunk must end at the end of the text")
	}
}
