package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"
)

const embedTimeout = 60 * time.Second

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type PointWriter interface {
	Upsert(ctx context.Context, collection string, points []qdrant.Point) error
}

// Worker drains one queue for the lifetime of the process: dequeue a message,
// embed its speaker turns as a single vector, upsert one point carrying the
// full message payload. Delivery is at-most-once: a failed message is logged,
// counted and discarded so a poison item can never stall the queue.
type Worker struct {
	queue      *Queue
	embedder   Embedder
	store      PointWriter
	collection string

	processed atomic.Uint64
	failed    atomic.Uint64
}

func NewWorker(queue *Queue, embedder Embedder, store PointWriter, collection string) *Worker {
	return &Worker{
		queue:      queue,
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// Run loops until ctx is cancelled. A message already dequeued when
// cancellation lands is processed or lost; there is no requeue.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("embedding worker started", "queue", w.queue.Name(), "collection", w.collection)
	for {
		msg, ok := w.queue.Dequeue(ctx)
		if !ok {
			slog.Info("embedding worker stopped", "queue", w.queue.Name())
			return
		}
		w.process(ctx, msg)
	}
}

func (w *Worker) process(ctx context.Context, msg Message) {
	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vector, err := w.embedder.Embed(embedCtx, msg.EmbeddingText())
	if err != nil {
		w.failed.Add(1)
		slog.ErrorContext(ctx, "embedding failed, dropping message",
			"queue", w.queue.Name(), "meeting_id", msg.MeetingID, "block_id", msg.BlockID, "error", err)
		return
	}

	point := qdrant.Point{
		ID:      uuid.NewString(),
		Vector:  vector,
		Payload: msg.Payload(),
	}
	if err := w.store.Upsert(embedCtx, w.collection, []qdrant.Point{point}); err != nil {
		w.failed.Add(1)
		slog.ErrorContext(ctx, "vector store write failed, dropping message",
			"queue", w.queue.Name(), "meeting_id", msg.MeetingID, "block_id", msg.BlockID, "error", err)
		return
	}

	w.processed.Add(1)
	slog.InfoContext(ctx, "message embedded",
		"queue", w.queue.Name(), "collection", w.collection, "meeting_id", msg.MeetingID, "block_id", msg.BlockID)
}

// Processed is the number of messages embedded and stored since startup.
func (w *Worker) Processed() uint64 { return w.processed.Load() }

// Failed is the number of messages discarded after an embedding or store
// error since startup.
func (w *Worker) Failed() uint64 { return w.failed.Load() }
