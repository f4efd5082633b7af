package text

import "strings"

// wordsPerToken is the fixed approximation used everywhere token budgets are
// converted to word budgets. Chunk sizes are advisory: a single line longer
// than the budget is still emitted whole.
const wordsPerToken = 0.75

const (
	DefaultMaxTokens     = 512
	DefaultOverlapTokens = 50
)

type Chunk struct {
	Text         string
	WordCount    int
	ApproxTokens int
}

// ChunkTranscript splits raw text into bounded, overlapping chunks along line
// boundaries. Lines map to speaker turns in transcripts and paragraphs in
// documents, so closing chunks only between lines keeps turns intact. Each
// new chunk is seeded with the trailing lines of the previous one until their
// cumulative word count reaches the overlap budget, preserving conversational
// context across boundaries.
//
// The function is pure: identical input and parameters always produce
// identical chunks. Blank lines are skipped. Empty input yields nil.
func ChunkTranscript(text string, maxTokens, overlapTokens int) []Chunk {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}

	maxWords := int(float64(maxTokens) * wordsPerToken)
	overlapWords := int(float64(overlapTokens) * wordsPerToken)

	var chunks []Chunk
	var current []string
	currentWords := 0

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		lineWords := len(strings.Fields(line))

		if currentWords+lineWords > maxWords && len(current) > 0 {
			chunks = append(chunks, closeChunk(current, currentWords))

			// Walk backward from the end of the closed chunk collecting
			// lines until the overlap word budget is met.
			var overlap []string
			overlapCount := 0
			for i := len(current) - 1; i >= 0; i-- {
				overlapCount += len(strings.Fields(current[i]))
				overlap = append([]string{current[i]}, overlap...)
				if overlapCount >= overlapWords {
					break
				}
			}

			current = overlap
			currentWords = overlapCount
		}

		current = append(current, line)
		currentWords += lineWords
	}

	if len(current) > 0 {
		chunks = append(chunks, closeChunk(current, currentWords))
	}

	return chunks
}

func closeChunk(lines []string, wordCount int) Chunk {
	return Chunk{
		Text:         strings.Join(lines, "\n"),
		WordCount:    wordCount,
		ApproxTokens: int(float64(wordCount) / wordsPerToken),
	}
}
