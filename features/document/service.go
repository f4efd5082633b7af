package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/text"
)

var ErrEmptyText = errors.New("document text is empty")

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type PointWriter interface {
	Upsert(ctx context.Context, collection string, points []qdrant.Point) error
}

type Service struct {
	embedder BatchEmbedder
	store    PointWriter
	repo     Repository
	now      func() time.Time
}

func NewService(e BatchEmbedder, store PointWriter, repo Repository) *Service {
	return &Service{embedder: e, store: store, repo: repo, now: time.Now}
}

// Ingest chunks the extracted text, embeds every chunk in one batch call and
// upserts the chunk points into the documents collection. The registry row is
// written last so a row only exists for content that made it into the store.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	chunks := text.ChunkTranscript(req.Text, text.DefaultMaxTokens, text.DefaultOverlapTokens)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = s.now().UTC().Format(time.RFC3339)
	}

	points := make([]qdrant.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = qdrant.Point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"meeting_id":  req.MeetingID,
				"file_name":   req.FileName,
				"chunk_index": i + 1,
				"text":        chunk.Text,
				"timestamp":   timestamp,
			},
		}
	}

	if err := s.store.Upsert(ctx, qdrant.CollectionDocuments, points); err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}

	doc := &Document{
		MeetingID:    req.MeetingID,
		FileName:     req.FileName,
		ChunksStored: len(points),
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		// Chunks are already searchable, so the registry miss is logged
		// rather than failing the ingest.
		slog.ErrorContext(ctx, "failed to save document registry row",
			"meeting_id", req.MeetingID, "file_name", req.FileName, "error", err)
	}

	return &IngestResponse{
		Status:       "success",
		Collection:   qdrant.CollectionDocuments,
		MeetingID:    req.MeetingID,
		FileName:     req.FileName,
		ChunksStored: len(points),
	}, nil
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
