package retrieval

import "github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"

// BuildFilter translates SearchFilters into a store predicate for one
// collection type. Only fields meaningful to that type contribute: chunk
// index ranges apply to documents, block id ranges to transcripts and chat.
// Every present field must match (conjunction). When nothing applies the
// result is nil, an unconstrained search, never an always-false predicate.
func BuildFilter(f *SearchFilters, collectionType CollectionType) map[string]any {
	if f == nil {
		return nil
	}

	var conditions []map[string]any

	if f.MeetingID != "" {
		conditions = append(conditions, qdrant.Match("meeting_id", f.MeetingID))
	}

	// Timestamps are keyword payload fields; a start bound is matched
	// exactly rather than as a range.
	if f.StartTimestamp != "" {
		conditions = append(conditions, qdrant.Match("timestamp", f.StartTimestamp))
	}

	switch collectionType {
	case TypeDocuments:
		if f.FileName != "" {
			conditions = append(conditions, qdrant.Match("file_name", f.FileName))
		}
		if f.ChunkIndexMin != nil || f.ChunkIndexMax != nil {
			conditions = append(conditions, qdrant.IntRange("chunk_index", f.ChunkIndexMin, f.ChunkIndexMax))
		}
	case TypeTranscripts, TypeChat:
		if f.BlockIDMin != nil || f.BlockIDMax != nil {
			conditions = append(conditions, qdrant.IntRange("block_id", f.BlockIDMin, f.BlockIDMax))
		}
	}

	if len(conditions) == 0 {
		return nil
	}
	return qdrant.Must(conditions...)
}
