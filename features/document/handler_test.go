package document_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/features/document"
)

func newIngestHandler(t *testing.T, embedder *MockBatchEmbedder, store *MockPointWriter, repo *MockRepo) *document.Handler {
	t.Helper()
	return document.NewHandler(document.NewService(embedder, store, repo))
}

func TestHandlerIngest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		embedder := new(MockBatchEmbedder)
		store := new(MockPointWriter)
		repo := new(MockRepo)

		embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{0.1, 0.2}}, nil)
		store.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		body := `{"meeting_id": "m1", "file_name": "notes.docx", "text": "short document body"}`
		req := httptest.NewRequest(http.MethodPost, "/api/embedding/document", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newIngestHandler(t, embedder, store, repo).Ingest(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp document.IngestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "documents", resp.Collection)
		assert.Equal(t, 1, resp.ChunksStored)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/embedding/document", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		newIngestHandler(t, new(MockBatchEmbedder), new(MockPointWriter), new(MockRepo)).Ingest(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
	})

	t.Run("Missing MeetingID", func(t *testing.T) {
		body := `{"file_name": "notes.docx", "text": "body"}`
		req := httptest.NewRequest(http.MethodPost, "/api/embedding/document", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newIngestHandler(t, new(MockBatchEmbedder), new(MockPointWriter), new(MockRepo)).Ingest(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "meeting_id is required")
	})

	t.Run("Empty Text", func(t *testing.T) {
		body := `{"meeting_id": "m1", "file_name": "notes.docx", "text": ""}`
		req := httptest.NewRequest(http.MethodPost, "/api/embedding/document", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newIngestHandler(t, new(MockBatchEmbedder), new(MockPointWriter), new(MockRepo)).Ingest(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "text is empty")
	})

	t.Run("Service Failure", func(t *testing.T) {
		embedder := new(MockBatchEmbedder)
		embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

		body := `{"meeting_id": "m1", "file_name": "notes.docx", "text": "short document body"}`
		req := httptest.NewRequest(http.MethodPost, "/api/embedding/document", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newIngestHandler(t, embedder, new(MockPointWriter), new(MockRepo)).Ingest(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	})
}

func TestHandlerList(t *testing.T) {
	t.Run("Empty List Returns Empty Array", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("List", mock.Anything).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/embedding/documents", nil)
		rec := httptest.NewRecorder()

		newIngestHandler(t, new(MockBatchEmbedder), new(MockPointWriter), repo).List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})

	t.Run("Returns Rows With Count", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("List", mock.Anything).Return([]document.Document{
			{ID: "1", MeetingID: "m1", FileName: "a.txt", ChunksStored: 3},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/embedding/documents", nil)
		rec := httptest.NewRecorder()

		newIngestHandler(t, new(MockBatchEmbedder), new(MockPointWriter), repo).List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":1`)
		assert.Contains(t, rec.Body.String(), "a.txt")
	})
}
