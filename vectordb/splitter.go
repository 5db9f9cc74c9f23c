package vectordb

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Default chunking settings. The overlap preserves context at chunk
// boundaries.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// TextSplitter wraps the langchaingo recursive character splitter with the
// guarantees the admission path relies on: deterministic output, no empty
// chunks, and at least one chunk for non-empty input.
type TextSplitter struct {
	inner textsplitter.RecursiveCharacter
}

// NewTextSplitter creates a splitter with the given chunk size and overlap.
// Non-positive values fall back to the defaults.
func NewTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &TextSplitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// SplitText splits text into ordered chunks.
func (s *TextSplitter) SplitText(text string) ([]string, error) {
	raw, err := s.inner.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) == "" {
			continue
		}
		chunks = append(chunks, c)
	}
	if len(chunks) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, nil
		}
		chunks = append(chunks, trimmed)
	}
	return chunks, nil
}
