package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/middleware"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/retrieval"
)

const (
	defaultTopK = 5
	maxTopK     = 50
)

type Searcher interface {
	Search(ctx context.Context, req retrieval.Request) (*retrieval.Response, error)
}

type Handler struct {
	searcher Searcher
}

func NewHandler(s Searcher) *Handler {
	return &Handler{searcher: s}
}

// request mirrors the public API body. IncludeSources is a pointer so an
// absent field can default to true.
type request struct {
	Query          string                   `json:"query"`
	Filters        *retrieval.SearchFilters `json:"filters"`
	TopK           int                      `json:"top_k"`
	IncludeSources *bool                    `json:"include_sources"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "INVALID_REQUEST", "invalid JSON body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		h.writeError(ctx, w, "INVALID_REQUEST", "query is required", http.StatusBadRequest)
		return
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}
	if req.TopK < 1 || req.TopK > maxTopK {
		h.writeError(ctx, w, "INVALID_REQUEST", "top_k must be between 1 and 50", http.StatusBadRequest)
		return
	}

	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	slog.InfoContext(ctx, "rag search", "query", req.Query, "top_k", req.TopK, "correlationId", correlationID)

	resp, err := h.searcher.Search(ctx, retrieval.Request{
		Query:          req.Query,
		Filters:        req.Filters,
		TopK:           req.TopK,
		IncludeSources: includeSources,
	})
	if err != nil {
		slog.ErrorContext(ctx, "rag search failed", "query", req.Query, "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
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
