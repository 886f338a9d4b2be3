package chunking

import (
	"strings"
	"unicode"
)

// Splitter cuts text into rune windows of ChunkSize with Overlap runes shared
// between neighbours. A window ends at the last whitespace in its second
// half when there is one.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 4000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.ChunkSize {
		return []string{string(runes)}
	}

	out := make([]string, 0, len(runes)/(s.ChunkSize-s.Overlap)+1)
	for start := 0; start < len(runes); {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = softBoundary(runes, start, end)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func softBoundary(runes []rune, start, end int) int {
	min := start + (end-start)/2
	for i := end; i > min; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
