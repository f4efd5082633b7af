package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Queue is a bounded FIFO buffer between the transport collaborator and one
// embedding worker. Enqueue never blocks the producer: when the buffer is
// full the oldest queued message is discarded to admit the new one, and the
// drop is counted so operators can see data loss. Ordering is strict FIFO
// within a queue; nothing is guaranteed across queues.
type Queue struct {
	name    string
	ch      chan Message
	dropped atomic.Uint64
}

func NewQueue(name string, capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{name: name, ch: make(chan Message, capacity)}
}

func (q *Queue) Name() string { return q.name }

// Enqueue admits msg, evicting the oldest queued message if the buffer is
// full. It never blocks and never fails.
func (q *Queue) Enqueue(msg Message) {
	for {
		select {
		case q.ch <- msg:
			return
		default:
		}

		select {
		case old := <-q.ch:
			q.dropped.Add(1)
			slog.Warn("ingestion queue full, dropping oldest message",
				"queue", q.name, "meeting_id", old.MeetingID, "block_id", old.BlockID)
		default:
			// A worker drained the queue between the two selects; retry the send.
		}
	}
}

// Dequeue blocks until a message is available or ctx is cancelled. The second
// return value is false only on cancellation.
func (q *Queue) Dequeue(ctx context.Context) (Message, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	case <-ctx.Done():
		return Message{}, false
	}
}

// Depth is the number of messages currently buffered.
func (q *Queue) Depth() int { return len(q.ch) }

// Dropped is the number of messages evicted by overflow since startup.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
