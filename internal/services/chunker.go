package services

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

const (
	DefaultSentencesPerChunk = 5
	DefaultSentenceOverlap   = 1
)

// Chunker splits raw text into index-ready passages
type Chunker interface {
	Chunk(text string) ([]string, error)
}

// SentenceChunker groups consecutive sentences into chunks with a
// configurable overlap so context is not cut mid-thought at chunk
// boundaries. Chunking is deterministic: the same text always yields
// the same chunks in the same order.
type SentenceChunker struct {
	sentencesPerChunk int
	overlap           int
}

// NewSentenceChunker creates a chunker with the given window sizes.
// Non-positive values fall back to the defaults.
func NewSentenceChunker(sentencesPerChunk, overlap int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = DefaultSentencesPerChunk
	}
	if overlap < 0 || overlap >= sentencesPerChunk {
		overlap = DefaultSentenceOverlap
		if overlap >= sentencesPerChunk {
			overlap = 0
		}
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlap:           overlap,
	}
}

// Chunk splits text into sentence groups. Whitespace-only input yields
// no chunks and no error; malformed text that the segmenter cannot
// process is reported to the caller.
func (c *SentenceChunker) Chunk(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, NewServiceError(CodeInternal, "chunk", err, "")
	}

	sentences := make([]string, 0)
	for _, sent := range doc.Sentences() {
		trimmed := strings.TrimSpace(sent.Text)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	if len(sentences) == 0 {
		return []string{}, nil
	}

	step := c.sentencesPerChunk - c.overlap
	chunks := make([]string, 0, (len(sentences)+step-1)/step)
	for start := 0; start < len(sentences); start += step {
		end := start + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end == len(sentences) {
			break
		}
	}
	return chunks, nil
}
