package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	t.Run("Groups Results By Source Type", func(t *testing.T) {
		results := []SearchResult{
			{Collection: "documents", Content: "budget table", MeetingID: "m1", Metadata: map[string]any{"file_name": "budget.xlsx"}},
			{Collection: "meeting_transcripts", Content: "alice: we agreed", MeetingID: "m1", Timestamp: "1760814000"},
			{Collection: "chat_messages", Content: "bob: link here", MeetingID: "m1", Timestamp: "1760814060"},
		}

		prompt := BuildPrompt("what was agreed?", results)

		assert.Contains(t, prompt, "**User Query:** what was agreed?")
		assert.Contains(t, prompt, "**Chat Messages:**")
		assert.Contains(t, prompt, "**Meeting Transcripts:**")
		assert.Contains(t, prompt, "**Attached Documents:**")

		chatIdx := strings.Index(prompt, "**Chat Messages:**")
		transcriptIdx := strings.Index(prompt, "**Meeting Transcripts:**")
		docIdx := strings.Index(prompt, "**Attached Documents:**")
		assert.Less(t, chatIdx, transcriptIdx)
		assert.Less(t, transcriptIdx, docIdx)
	})

	t.Run("Omits Empty Groups", func(t *testing.T) {
		results := []SearchResult{
			{Collection: "documents", Content: "only docs", MeetingID: "m1", Metadata: map[string]any{"file_name": "a.txt"}},
		}
		prompt := BuildPrompt("q", results)
		assert.NotContains(t, prompt, "**Chat Messages:**")
		assert.NotContains(t, prompt, "**Meeting Transcripts:**")
		assert.Contains(t, prompt, "**Attached Documents:**")
	})

	t.Run("Citations", func(t *testing.T) {
		results := []SearchResult{
			{Collection: "meeting_transcripts", Content: "x", MeetingID: "m1", Timestamp: "1760814000"},
			{Collection: "documents", Content: "y", MeetingID: "m2", Metadata: map[string]any{"file_name": "notes.docx"}},
		}
		prompt := BuildPrompt("q", results)
		assert.Contains(t, prompt, "[meeting: m1, time: 2025-10-18 19:00:00 UTC]")
		assert.Contains(t, prompt, "[file: notes.docx, meeting: m2]")
	})

	t.Run("Truncates Long Content", func(t *testing.T) {
		long := strings.Repeat("a", 800)
		results := []SearchResult{
			{Collection: "documents", Content: long, MeetingID: "m1", Metadata: map[string]any{"file_name": "a.txt"}},
		}
		prompt := BuildPrompt("q", results)
		assert.Contains(t, prompt, strings.Repeat("a", 500))
		assert.NotContains(t, prompt, strings.Repeat("a", 501))
	})

	t.Run("Ends With Instructions", func(t *testing.T) {
		prompt := BuildPrompt("q", []SearchResult{{Collection: "documents", Content: "x"}})
		assert.True(t, strings.HasSuffix(prompt, "**Your Answer:**"))
	})
}

func TestHumanTimestamp(t *testing.T) {
	assert.Equal(t, "2025-10-18 19:00:00 UTC", humanTimestamp("1760814000"))
	assert.Equal(t, "2025-10-18T19:00:00Z", humanTimestamp("2025-10-18T19:00:00Z"))
	assert.Equal(t, "", humanTimestamp(""))
}

func TestFallbackAnswer(t *testing.T) {
	require.Contains(t, FallbackAnswer, "rephrasing")
}
