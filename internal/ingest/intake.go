package ingest

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"
)

// IntakeConsumer bridges the transport collaborator to the in-process
// queues. Transport publishes one JSON Message per transcript or chat block;
// the consumer normalizes it and routes by kind. Malformed messages are
// poison pills: logged and acked so they are never redelivered.
type IntakeConsumer struct {
	transcripts *Queue
	chats       *Queue
	now         func() time.Time
}

func NewIntakeConsumer(transcripts, chats *Queue) *IntakeConsumer {
	return &IntakeConsumer{
		transcripts: transcripts,
		chats:       chats,
		now:         time.Now,
	}
}

func (c *IntakeConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var msg Message
	if err := json.Unmarshal(m.Body, &msg); err != nil {
		slog.Error("poison pill: invalid ingestion message", "error", err)
		return nil
	}

	c.Route(msg)
	return nil
}

// Route applies intake defaults and enqueues the message on the queue for its
// kind. It never blocks and never fails; under overflow the oldest queued
// message is dropped (see Queue.Enqueue).
func (c *IntakeConsumer) Route(msg Message) {
	msg.Normalize(c.now())

	switch msg.Kind {
	case KindChat:
		c.chats.Enqueue(msg)
	default:
		c.transcripts.Enqueue(msg)
	}

	slog.Debug("message queued", "kind", msg.Kind, "meeting_id", msg.MeetingID, "block_id", msg.BlockID)
}
