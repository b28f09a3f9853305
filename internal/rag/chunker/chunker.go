package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/examassist/waecrag/internal/domain/ragModel"
)

// ErrDecode marks a document whose body is not valid text. Ingestion skips
// and reports these instead of failing the batch.
var ErrDecode = errors.New("document cannot be decoded as text")

// Separators ordered from "best" to "worst" cut point. A window is cut at
// the last occurrence of the best separator it contains.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split cuts a document into non-overlapping windows of at most maxLen
// runes. No characters are dropped: concatenating the chunk texts in
// ordinal order reproduces the document body exactly, which also makes the
// result trivially reproducible for an unchanged document.
func Split(doc ragModel.Document, maxLen int) ([]ragModel.Chunk, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("chunker: invalid max length %d", maxLen)
	}
	if !utf8.ValidString(doc.RawText) {
		return nil, fmt.Errorf("%w: %s", ErrDecode, doc.Id)
	}

	runes := []rune(doc.RawText)
	var chunks []ragModel.Chunk

	start := 0
	for start < len(runes) {
		end := cutPoint(runes, start, maxLen)
		ordinal := len(chunks)
		chunks = append(chunks, ragModel.Chunk{
			Id:         ragModel.ChunkId(doc.Id, ordinal),
			DocumentId: doc.Id,
			Ordinal:    ordinal,
			Text:       string(runes[start:end]),
			CharStart:  start,
			CharEnd:    end,
		})
		start = end
	}

	return chunks, nil
}

// cutPoint picks where the window starting at start ends. It prefers the
// last paragraph break in the window, then line break, sentence end,
// space, and finally a hard cut at maxLen.
func cutPoint(runes []rune, start int, maxLen int) int {
	remaining := len(runes) - start
	if remaining <= maxLen {
		return len(runes)
	}

	window := string(runes[start : start+maxLen])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx <= 0 {
			continue
		}
		// Cut after the separator so it stays with the preceding chunk.
		return start + utf8.RuneCountInString(window[:idx]) + utf8.RuneCountInString(sep)
	}

	return start + maxLen
}
