package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/middleware"
)

type QueueStats interface {
	Name() string
	Depth() int
	Dropped() uint64
}

type WorkerStats interface {
	Processed() uint64
	Failed() uint64
}

type DocumentRepo interface {
	Count(ctx context.Context) (int, error)
}

type PointCounter interface {
	Count(ctx context.Context, collection string) (int, error)
}

type Handler struct {
	queues       []QueueStats
	workers      map[string]WorkerStats
	documentRepo DocumentRepo
	vectorStore  PointCounter
}

func NewHandler(queues []QueueStats, workers map[string]WorkerStats, repo DocumentRepo, store PointCounter) *Handler {
	return &Handler{queues: queues, workers: workers, documentRepo: repo, vectorStore: store}
}

type QueueSnapshot struct {
	Depth   int    `json:"depth"`
	Dropped uint64 `json:"dropped"`
}

type WorkerSnapshot struct {
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}

type StatsResponse struct {
	Queues      map[string]QueueSnapshot  `json:"queues"`
	Workers     map[string]WorkerSnapshot `json:"workers"`
	Collections map[string]int            `json:"collections"`
	Documents   int                       `json:"documents"`
}

// GetStats snapshots queue depths, worker counters and store sizes. Counter
// reads are independent loads, so the numbers are individually accurate but
// not a single atomic snapshot.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	resp := StatsResponse{
		Queues:      make(map[string]QueueSnapshot, len(h.queues)),
		Workers:     make(map[string]WorkerSnapshot, len(h.workers)),
		Collections: make(map[string]int),
	}

	for _, q := range h.queues {
		resp.Queues[q.Name()] = QueueSnapshot{Depth: q.Depth(), Dropped: q.Dropped()}
	}
	for name, worker := range h.workers {
		resp.Workers[name] = WorkerSnapshot{Processed: worker.Processed(), Failed: worker.Failed()}
	}

	docCount, err := h.documentRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count documents", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count documents", http.StatusInternalServerError)
		return
	}
	resp.Documents = docCount

	for _, schema := range qdrant.Collections() {
		count, err := h.vectorStore.Count(ctx, schema.Name)
		if err != nil {
			// Stats stay useful when the vector store is unreachable.
			slog.ErrorContext(ctx, "failed to count collection points",
				"collection", schema.Name, "error", err, "correlationId", correlationID)
			continue
		}
		resp.Collections[schema.Name] = count
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
