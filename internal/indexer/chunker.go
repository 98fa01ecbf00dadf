package indexer

// ChunkText splits text into fixed-size overlapping windows. Text at or under
// size comes back as a single chunk. Otherwise each window holds up to size
// runes and consecutive windows share overlap runes; the final window always
// ends at the end of the text. Size is measured in runes so multi-byte
// content never splits mid-character.
//
// Callers must ensure 0 <= overlap < size; the window step is clamped to at
// least one rune so malformed arguments cannot stall the loop.
func ChunkText(text string, size, overlap int) []string {
	runes := []rune(text)
	n := len(runes)

	if n <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}
