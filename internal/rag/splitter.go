package rag

import (
	"strings"
	"unicode/utf8"
)

// Chunking bounds, in characters. Chunks end at sentence boundaries where one
// exists inside the window; consecutive chunks share an overlap so no fact is
// stranded on a boundary.
const (
	MaxChunkSize = 1200
	MinChunkSize = 600
	ChunkOverlap = 200
)

var sentenceEnders = []string{". ", ".\n", "! ", "!\n", "? ", "?\n"}

// SplitText cuts normalized text into overlapping chunks of MinChunkSize to
// MaxChunkSize characters. Short inputs come back as a single chunk.
func SplitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= MaxChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := runeFloor(text, start+MaxChunkSize)
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := sentenceCut(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := runeFloor(text, cut-ChunkOverlap)
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// runeFloor backs i up to the start of the rune it falls inside, so slicing
// at the result never splits a multi-byte character.
func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// sentenceCut finds the latest sentence end inside (start+MinChunkSize, end];
// when none exists the hard window end is used.
func sentenceCut(text string, start, end int) int {
	window := text[start:end]
	floor := MinChunkSize

	best := -1
	for _, ender := range sentenceEnders {
		idx := strings.LastIndex(window, ender)
		if idx > floor && idx+len(ender) > best {
			best = idx + len(ender)
		}
	}
	if best < 0 {
		return end
	}
	return start + best
}
