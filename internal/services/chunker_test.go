package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentenceChunker_EmptyInput(t *testing.T) {
	chunker := NewSentenceChunker(3, 1)

	chunks, err := chunker.Chunk("")
	assert.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = chunker.Chunk("   \n\t  ")
	assert.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSentenceChunker_ShortTextSingleChunk(t *testing.T) {
	chunker := NewSentenceChunker(5, 1)

	chunks, err := chunker.Chunk("This is one sentence. This is another.")
	assert.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "This is one sentence.")
	assert.Contains(t, chunks[0], "This is another.")
}

func TestSentenceChunker_OverlapBetweenChunks(t *testing.T) {
	chunker := NewSentenceChunker(2, 1)

	text := "First sentence here. Second sentence here. Third sentence here. Fourth sentence here."
	chunks, err := chunker.Chunk(text)
	assert.NoError(t, err)
	assert.True(t, len(chunks) >= 2)

	// Consecutive chunks share the overlapping sentence
	assert.Contains(t, chunks[0], "Second sentence here.")
	assert.Contains(t, chunks[1], "Second sentence here.")
}

func TestSentenceChunker_Deterministic(t *testing.T) {
	chunker := NewSentenceChunker(3, 1)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)

	first, err := chunker.Chunk(text)
	assert.NoError(t, err)
	second, err := chunker.Chunk(text)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSentenceChunker_CoversAllSentences(t *testing.T) {
	chunker := NewSentenceChunker(2, 0)

	text := "Alpha is first. Beta is second. Gamma is third. Delta is fourth. Epsilon is fifth."
	chunks, err := chunker.Chunk(text)
	assert.NoError(t, err)

	joined := strings.Join(chunks, " ")
	for _, word := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		assert.Contains(t, joined, word)
	}
}

func TestNewSentenceChunker_Defaults(t *testing.T) {
	chunker := NewSentenceChunker(0, -1)
	assert.Equal(t, DefaultSentencesPerChunk, chunker.sentencesPerChunk)
	assert.Equal(t, DefaultSentenceOverlap, chunker.overlap)

	// Overlap must stay below the window size
	chunker = NewSentenceChunker(3, 3)
	assert.Equal(t, DefaultSentenceOverlap, chunker.overlap)

	// A single-sentence window leaves no room for overlap
	chunker = NewSentenceChunker(1, 1)
	assert.Equal(t, 0, chunker.overlap)
}
