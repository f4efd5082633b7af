package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, collection string, vector []float32, filter map[string]any, limit int) ([]qdrant.SearchHit, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	embedder  Embedder
	store     VectorStore
	generator Generator
	logger    *QueryLogger
}

func NewService(e Embedder, store VectorStore, g Generator, l *QueryLogger) *Service {
	return &Service{embedder: e, store: store, generator: g, logger: l}
}

// Search answers a query by fanning out to every collection in parallel,
// fusing the ranked results and grounding a generated answer in them.
//
// Failure containment: a collection that errors degrades to an empty result
// list without affecting its siblings. Only the synchronous critical path of
// the query itself, embedding the query and generating the answer, surfaces
// an error to the caller.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	stageStart := time.Now()
	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	slog.DebugContext(ctx, "query embedded", "dimension", len(vector), "duration", time.Since(stageStart))

	stageStart = time.Now()
	targets := Targets()
	perTarget := make([][]SearchResult, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			perTarget[i] = s.searchCollection(ctx, target, vector, req.Filters, req.TopK)
		}(i, target)
	}
	wg.Wait()

	var all []SearchResult
	for _, results := range perTarget {
		all = append(all, results...)
	}
	slog.DebugContext(ctx, "parallel search completed", "total_results", len(all), "duration", time.Since(stageStart))

	fused := Fuse(all, req.TopK)

	var answer string
	if len(fused) == 0 {
		// Not an error: deterministic fallback, generator bypassed.
		answer = FallbackAnswer
		slog.InfoContext(ctx, "no results for query, returning fallback answer", "query", req.Query)
	} else {
		stageStart = time.Now()
		answer, err = s.generator.Generate(ctx, BuildPrompt(req.Query, fused))
		if err != nil {
			return nil, fmt.Errorf("generating answer: %w", err)
		}
		slog.DebugContext(ctx, "answer generated", "answer_length", len(answer), "duration", time.Since(stageStart))
	}

	sources := []SearchResult{}
	if req.IncludeSources {
		sources = fused
	}

	if s.logger != nil {
		s.logger.Log(ctx, QueryLogEntry{
			Query:      req.Query,
			NumResults: len(fused),
			Duration:   time.Since(start),
		})
	}

	return &Response{
		Answer:           answer,
		Sources:          sources,
		Query:            req.Query,
		TotalResults:     len(all),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// searchCollection runs one per-collection search. Errors degrade to an
// empty result list so a failing or slow collection never fails the query.
func (s *Service) searchCollection(ctx context.Context, target Target, vector []float32, filters *SearchFilters, topK int) []SearchResult {
	filter := BuildFilter(filters, target.Type)

	hits, err := s.store.Search(ctx, target.Collection, vector, filter, topK)
	if err != nil {
		slog.ErrorContext(ctx, "collection search failed, degrading to empty result",
			"collection", target.Collection, "error", err)
		return nil
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			Collection: target.Collection,
			Score:      hit.Score,
			Content:    truncate(renderContent(target.Type, hit.Payload)),
			Metadata:   hit.Payload,
			MeetingID:  payloadString(hit.Payload, "meeting_id"),
			Timestamp:  payloadString(hit.Payload, "timestamp"),
		})
	}
	return results
}

// renderContent extracts readable text from a payload. Transcript and chat
// payloads carry a speaker-turn mapping; documents carry plain text.
func renderContent(collectionType CollectionType, payload map[string]any) string {
	if collectionType == TypeDocuments {
		if text, ok := payload["text"].(string); ok {
			return text
		}
		return fmt.Sprintf("%v", payload)
	}

	turns, ok := payload["speaker_turns"].(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", payload)
	}

	type turn struct {
		speaker     string
		text        string
		meetingTime float64
	}
	ordered := make([]turn, 0, len(turns))
	for speaker, raw := range turns {
		data, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		text, ok := data["text"].(string)
		if !ok {
			continue
		}
		mt, _ := data["meeting_time"].(float64)
		ordered = append(ordered, turn{speaker: speaker, text: text, meetingTime: mt})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].meetingTime != ordered[j].meetingTime {
			return ordered[i].meetingTime < ordered[j].meetingTime
		}
		return ordered[i].speaker < ordered[j].speaker
	})

	lines := make([]string, 0, len(ordered))
	for _, t := range ordered {
		lines = append(lines, fmt.Sprintf("%s: %s", t.speaker, t.text))
	}
	return strings.Join(lines, "\n")
}

func payloadString(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
