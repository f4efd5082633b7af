package qdrant

import "context"

// One collection per content domain. All three share the same embedding model
// and cosine distance; scores from different collections are only comparable
// because of that, so the dimension and metric are pinned here.
const (
	CollectionDocuments   = "documents"
	CollectionTranscripts = "meeting_transcripts"
	CollectionChat        = "chat_messages"
)

type CollectionSchema struct {
	Name    string
	Indexes []FieldIndex
}

func Collections() []CollectionSchema {
	return []CollectionSchema{
		{
			Name: CollectionDocuments,
			Indexes: []FieldIndex{
				{Name: "meeting_id", Schema: FieldKeyword},
				{Name: "file_name", Schema: FieldKeyword},
				{Name: "chunk_index", Schema: FieldInteger},
				{Name: "timestamp", Schema: FieldKeyword},
			},
		},
		{
			Name: CollectionTranscripts,
			Indexes: []FieldIndex{
				{Name: "meeting_id", Schema: FieldKeyword},
				{Name: "block_id", Schema: FieldInteger},
				{Name: "timestamp", Schema: FieldKeyword},
			},
		},
		{
			Name: CollectionChat,
			Indexes: []FieldIndex{
				{Name: "meeting_id", Schema: FieldKeyword},
				{Name: "block_id", Schema: FieldInteger},
				{Name: "timestamp", Schema: FieldKeyword},
			},
		},
	}
}

// EnsureCollections creates any missing collection with the given vector
// dimension and cosine distance, then ensures the payload indexes each
// collection declares. Safe to call on every startup.
func EnsureCollections(ctx context.Context, c *Client, vectorDim int) error {
	for _, schema := range Collections() {
		if err := c.EnsureCollection(ctx, schema.Name, vectorDim, "Cosine"); err != nil {
			return err
		}
		c.EnsurePayloadIndexes(ctx, schema.Name, schema.Indexes)
	}
	return nil
}
