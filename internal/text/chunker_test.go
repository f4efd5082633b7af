package text

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTranscript(t *testing.T) {
	t.Run("Empty Input", func(t *testing.T) {
		assert.Nil(t, ChunkTranscript("", 512, 50))
		assert.Nil(t, ChunkTranscript("\n\n  \n", 512, 50))
	})

	t.Run("Single Small Chunk", func(t *testing.T) {
		text := "alice: hello there\nbob: hi alice"
		chunks := ChunkTranscript(text, 512, 50)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0].Text)
		assert.Equal(t, 6, chunks[0].WordCount)
		assert.Equal(t, 8, chunks[0].ApproxTokens) // 6 / 0.75
	})

	t.Run("Blank Lines Skipped", func(t *testing.T) {
		chunks := ChunkTranscript("one two\n\n\nthree four", 512, 50)
		require.Len(t, chunks, 1)
		assert.Equal(t, "one two\nthree four", chunks[0].Text)
		assert.Equal(t, 4, chunks[0].WordCount)
	})

	t.Run("Splits At Word Budget", func(t *testing.T) {
		// maxTokens=8 -> maxWords=6. Three-word lines: two fit, third forces a split.
		var lines []string
		for i := 0; i < 6; i++ {
			lines = append(lines, fmt.Sprintf("speaker%d: word word", i))
		}
		chunks := ChunkTranscript(strings.Join(lines, "\n"), 8, 0)
		assert.True(t, len(chunks) > 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, c.WordCount, 6)
		}
	})

	t.Run("Overlap Seeds Next Chunk", func(t *testing.T) {
		// maxWords=6, overlapWords=3: each new chunk starts with the last
		// line of the previous one.
		lines := []string{
			"a: one two",
			"b: three four",
			"c: five six",
			"d: seven eight",
		}
		chunks := ChunkTranscript(strings.Join(lines, "\n"), 8, 4)
		require.True(t, len(chunks) >= 2)

		for i := 1; i < len(chunks); i++ {
			prevLines := strings.Split(chunks[i-1].Text, "\n")
			carried := prevLines[len(prevLines)-1]
			assert.True(t, strings.HasPrefix(chunks[i].Text, carried),
				"chunk %d should start with the carried line %q", i, carried)
		}
	})

	t.Run("Oversized Line Emitted Whole", func(t *testing.T) {
		long := strings.Repeat("word ", 500) // 500 words, far over any budget
		chunks := ChunkTranscript(strings.TrimSpace(long), 512, 50)
		require.Len(t, chunks, 1)
		assert.Equal(t, 500, chunks[0].WordCount)
	})

	t.Run("Default Budget Bound", func(t *testing.T) {
		// No chunk exceeds 0.75*512=384 words when no single line does.
		var lines []string
		for i := 0; i < 200; i++ {
			lines = append(lines, fmt.Sprintf("speaker%d: this turn has exactly eight words total", i))
		}
		chunks := ChunkTranscript(strings.Join(lines, "\n"), DefaultMaxTokens, DefaultOverlapTokens)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			assert.LessOrEqual(t, c.WordCount, 384)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		var lines []string
		for i := 0; i < 100; i++ {
			lines = append(lines, fmt.Sprintf("speaker%d: deterministic output matters for repeatable ingestion runs", i))
		}
		text := strings.Join(lines, "\n")

		first := ChunkTranscript(text, 64, 16)
		second := ChunkTranscript(text, 64, 16)
		assert.Equal(t, first, second)
	})

	t.Run("Reassembly Preserves Line Order", func(t *testing.T) {
		var lines []string
		for i := 0; i < 50; i++ {
			lines = append(lines, fmt.Sprintf("speaker%d: line number %d of the meeting", i, i))
		}
		text := strings.Join(lines, "\n")
		chunks := ChunkTranscript(text, 32, 8)
		require.True(t, len(chunks) > 1)

		// Dropping each chunk's overlapping prefix (lines already seen at the
		// end of the previous chunk) must reproduce the input lines in order.
		var rebuilt []string
		for i, c := range chunks {
			cl := strings.Split(c.Text, "\n")
			if i == 0 {
				rebuilt = append(rebuilt, cl...)
				continue
			}
			overlapLen := overlapLength(rebuilt, cl)
			rebuilt = append(rebuilt, cl[overlapLen:]...)
		}
		assert.Equal(t, lines, rebuilt)
	})
}

func overlapLength(prev, next []string) int {
	max := len(next)
	if len(prev) < max {
		max = len(prev)
	}
	for n := max; n > 0; n-- {
		if equalStrings(prev[len(prev)-n:], next[:n]) {
			return n
		}
	}
	return 0
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
