package retrieval

import "github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"

// CollectionType is the semantic domain of a collection; it decides which
// filter fields apply and how payload content is rendered.
type CollectionType string

const (
	TypeDocuments   CollectionType = "documents"
	TypeTranscripts CollectionType = "transcripts"
	TypeChat        CollectionType = "chat"
)

type Target struct {
	Collection string
	Type       CollectionType
}

// Targets lists every collection a query fans out to, in the order their
// results are concatenated before fusion.
func Targets() []Target {
	return []Target{
		{Collection: qdrant.CollectionDocuments, Type: TypeDocuments},
		{Collection: qdrant.CollectionTranscripts, Type: TypeTranscripts},
		{Collection: qdrant.CollectionChat, Type: TypeChat},
	}
}

// SearchFilters narrows a query; absent fields impose no constraint.
type SearchFilters struct {
	MeetingID      string `json:"meeting_id,omitempty"`
	FileName       string `json:"file_name,omitempty"`
	StartTimestamp string `json:"start_timestamp,omitempty"`
	EndTimestamp   string `json:"end_timestamp,omitempty"`
	ChunkIndexMin  *int   `json:"chunk_index_min,omitempty"`
	ChunkIndexMax  *int   `json:"chunk_index_max,omitempty"`
	BlockIDMin     *int   `json:"block_id_min,omitempty"`
	BlockIDMax     *int   `json:"block_id_max,omitempty"`
}

type SearchResult struct {
	Collection string         `json:"collection"`
	Score      float64        `json:"score"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	MeetingID  string         `json:"meeting_id,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
}

type Request struct {
	Query          string         `json:"query"`
	Filters        *SearchFilters `json:"filters,omitempty"`
	TopK           int            `json:"top_k"`
	IncludeSources bool           `json:"include_sources"`
}

type Response struct {
	Answer           string         `json:"answer"`
	Sources          []SearchResult `json:"sources"`
	Query            string         `json:"query"`
	TotalResults     int            `json:"total_results"`
	ProcessingTimeMs float64        `json:"processing_time_ms"`
}
