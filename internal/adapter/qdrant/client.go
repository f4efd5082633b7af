// Package qdrant is a thin REST adapter over the vector store. It covers the
// four operations the pipeline needs: idempotent collection creation,
// idempotent payload-index creation, batched upserts and filtered similarity
// search.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// UpsertBatchSize caps the number of points in a single upsert request.
const UpsertBatchSize = 50

// Point is one vector plus its metadata. Points are owned by the store once
// written; the pipeline only ever re-upserts by id, never patches in place.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

type SearchHit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

type FieldIndex struct {
	Name   string
	Schema string
}

const (
	FieldKeyword = "keyword"
	FieldInteger = "integer"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(url, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// EnsureCollection creates the collection if it does not exist. Existing
// collections are left untouched, so the call is safe to repeat at startup.
func (c *Client) EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error {
	if distance == "" {
		distance = "Cosine"
	}
	_, err := c.doRequest(ctx, http.MethodGet, "/collections/"+name, nil)
	if err == nil {
		return nil
	}
	req := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": distance,
		},
	}
	_, err = c.doRequest(ctx, http.MethodPut, "/collections/"+name, req)
	return err
}

// EnsurePayloadIndexes attempts to create each declared index. Failures
// (typically "index already exists") are logged and tolerated so startup is
// idempotent.
func (c *Client) EnsurePayloadIndexes(ctx context.Context, collection string, fields []FieldIndex) {
	for _, f := range fields {
		req := map[string]any{
			"field_name":   f.Name,
			"field_schema": f.Schema,
		}
		if _, err := c.doRequest(ctx, http.MethodPut, "/collections/"+collection+"/index", req); err != nil {
			slog.Debug("payload index not created", "collection", collection, "field", f.Name, "error", err)
		}
	}
}

// Upsert writes points with overwrite-by-id semantics, splitting large sets
// into batches of UpsertBatchSize to cap request size.
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	for start := 0; start < len(points); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(points) {
			end = len(points)
		}

		batch := make([]map[string]any, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, map[string]any{
				"id":      p.ID,
				"vector":  p.Vector,
				"payload": p.Payload,
			})
		}
		req := map[string]any{"points": batch}
		if _, err := c.doRequest(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", req); err != nil {
			return err
		}
	}
	return nil
}

// Search returns up to limit nearest neighbours with payloads. A nil filter
// means an unconstrained search.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, filter map[string]any, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if len(filter) > 0 {
		req["filter"] = filter
	}
	data, err := c.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/search", req)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(parsed.Result))
	for _, item := range parsed.Result {
		hits = append(hits, SearchHit{
			ID:      fmt.Sprintf("%v", item.ID),
			Score:   item.Score,
			Payload: item.Payload,
		})
	}
	return hits, nil
}

// Count returns the exact number of points in the collection.
func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/count", map[string]any{"exact": true})
	if err != nil {
		return 0, err
	}
	var parsed struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return 0, err
	}
	return parsed.Result.Count, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewBuffer(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// Match is an exact-match condition on a payload field.
func Match(key string, value any) map[string]any {
	return map[string]any{
		"key": key,
		"match": map[string]any{
			"value": value,
		},
	}
}

// IntRange is an inclusive range condition; nil bounds are open.
func IntRange(key string, gte, lte *int) map[string]any {
	rng := map[string]any{}
	if gte != nil {
		rng["gte"] = *gte
	}
	if lte != nil {
		rng["lte"] = *lte
	}
	return map[string]any{
		"key":   key,
		"range": rng,
	}
}

// Must combines conditions conjunctively: a point matches only if every
// condition holds.
func Must(conditions ...map[string]any) map[string]any {
	return map[string]any{
		"must": conditions,
	}
}
