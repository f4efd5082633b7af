package retrieval

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FallbackAnswer is returned verbatim when fusion produced nothing; the
// generation collaborator is never invoked in that case.
const FallbackAnswer = "I couldn't find any relevant information in the meeting transcripts or documents to answer your query. Try rephrasing your question or checking if the meeting has been processed."

const maxContentLength = 500

const promptHeader = `You are Bridge AI, an intelligent assistant for Bridge, a real-time multi-modal communication platform. Every session becomes a searchable meeting record of live transcripts, chat messages and attached documents.

**Your Role:**
- Answer questions grounded in meeting transcripts, chat messages and attached documents
- Provide precise, contextual answers when available
- Synthesize information across sources (conversations + documents + chats)
`

const promptInstructions = `**Instructions:**
1. Answer the query directly and concisely using only the provided context
2. Cite sources using the bracketed references shown with each context piece
3. If the context doesn't contain enough information to answer fully, say so clearly
4. Use a professional but conversational tone appropriate for a team collaboration tool

**Your Answer:**`

// BuildPrompt renders fused results into a grounding prompt. Results are
// grouped by source type while keeping their fused rank order inside each
// group; each piece carries a citation fragment the model is instructed to
// reference.
func BuildPrompt(query string, results []SearchResult) string {
	var chat, transcripts, documents []SearchResult
	for _, r := range results {
		name := strings.ToLower(r.Collection)
		switch {
		case strings.Contains(name, "transcript"):
			transcripts = append(transcripts, r)
		case strings.Contains(name, "chat"):
			chat = append(chat, r)
		case strings.Contains(name, "document"):
			documents = append(documents, r)
		}
	}

	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString("\n**User Query:** ")
	sb.WriteString(query)
	sb.WriteString("\n\n**Available Context:**\n\n")

	if len(chat) > 0 {
		sb.WriteString("**Chat Messages:**\n\n")
		for _, r := range chat {
			fmt.Fprintf(&sb, "[meeting: %s, time: %s]\n%s\n\n", r.MeetingID, humanTimestamp(r.Timestamp), truncate(r.Content))
		}
	}

	if len(transcripts) > 0 {
		sb.WriteString("**Meeting Transcripts:**\n\n")
		for _, r := range transcripts {
			fmt.Fprintf(&sb, "[meeting: %s, time: %s]\n%s\n\n", r.MeetingID, humanTimestamp(r.Timestamp), truncate(r.Content))
		}
	}

	if len(documents) > 0 {
		sb.WriteString("**Attached Documents:**\n\n")
		for _, r := range documents {
			fileName, _ := r.Metadata["file_name"].(string)
			fmt.Fprintf(&sb, "[file: %s, meeting: %s]\n%s\n\n", fileName, r.MeetingID, truncate(r.Content))
		}
	}

	sb.WriteString(promptInstructions)
	return sb.String()
}

// humanTimestamp renders an integer epoch as a readable UTC time; anything
// else is passed through as the literal the producer supplied.
func humanTimestamp(ts string) string {
	if epoch, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04:05 UTC")
	}
	return ts
}

func truncate(content string) string {
	if len(content) > maxContentLength {
		return content[:maxContentLength]
	}
	return content
}
