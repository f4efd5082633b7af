package ingest

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	KindTranscript = "transcript"
	KindChat       = "chat"
)

type SpeakerTurn struct {
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
	MeetingTime int    `json:"meeting_time"`
}

// Message is one block of live meeting content pushed by the transport
// collaborator. It is immutable once constructed and consumed by exactly one
// worker.
type Message struct {
	Kind      string                 `json:"kind"`
	MeetingID string                 `json:"meeting_id"`
	BlockID   int                    `json:"block_id"`
	Turns     map[string]SpeakerTurn `json:"speaker_turns"`
	Timestamp string                 `json:"timestamp"`
}

// Normalize applies the intake defaults: kind falls back to transcript and a
// missing timestamp is stamped with the current time.
func (m *Message) Normalize(now time.Time) {
	if m.Kind != KindChat {
		m.Kind = KindTranscript
	}
	if m.Timestamp == "" {
		m.Timestamp = now.UTC().Format(time.RFC3339)
	}
}

// EmbeddingText renders the speaker turns as "speaker: text" lines ordered by
// meeting time (speaker id as tie-break) so the embedded text is deterministic
// for a given message.
func (m *Message) EmbeddingText() string {
	type turn struct {
		speaker string
		t       SpeakerTurn
	}
	turns := make([]turn, 0, len(m.Turns))
	for speaker, t := range m.Turns {
		turns = append(turns, turn{speaker, t})
	}
	sort.Slice(turns, func(i, j int) bool {
		if turns[i].t.MeetingTime != turns[j].t.MeetingTime {
			return turns[i].t.MeetingTime < turns[j].t.MeetingTime
		}
		return turns[i].speaker < turns[j].speaker
	})

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.speaker, t.t.Text))
	}
	return strings.Join(lines, "\n")
}

// Payload is the full message rendered as vector point metadata.
func (m *Message) Payload() map[string]any {
	turns := make(map[string]any, len(m.Turns))
	for speaker, t := range m.Turns {
		turns[speaker] = map[string]any{
			"text":         t.Text,
			"timestamp":    t.Timestamp,
			"meeting_time": t.MeetingTime,
		}
	}
	return map[string]any{
		"meeting_id":    m.MeetingID,
		"block_id":      m.BlockID,
		"speaker_turns": turns,
		"timestamp":     m.Timestamp,
	}
}
