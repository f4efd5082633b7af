package document

import "time"

// Document is one registry row describing a file that was chunked and
// embedded into the vector store.
type Document struct {
	ID           string    `json:"id"`
	MeetingID    string    `json:"meeting_id"`
	FileName     string    `json:"file_name"`
	ChunksStored int       `json:"chunks_stored"`
	CreatedAt    time.Time `json:"created_at"`
}

type IngestRequest struct {
	MeetingID string `json:"meeting_id"`
	FileName  string `json:"file_name"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type IngestResponse struct {
	Status       string `json:"status"`
	Collection   string `json:"collection"`
	MeetingID    string `json:"meeting_id"`
	FileName     string `json:"file_name"`
	ChunksStored int    `json:"chunks_stored"`
}
