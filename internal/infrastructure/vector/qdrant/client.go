package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/infrastructure/resilience"
)

// Client stores one point per context item. The point id is the item id.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

// New builds a qdrant HTTP client. executor may be nil.
func New(baseURL, collection string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Collection() string {
	return c.collection
}

func (c *Client) Upsert(ctx context.Context, item *domain.ContextItem, vector []float32) error {
	if item == nil || len(vector) == 0 {
		return fmt.Errorf("qdrant upsert: empty item or vector")
	}
	if err := c.ensureCollection(ctx, len(vector)); err != nil {
		return wrapTemporaryIfNeeded("qdrant ensure collection", err)
	}

	type point struct {
		ID      int64          `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}
	reqBody := map[string]any{
		"points": []point{{
			ID:     item.ID,
			Vector: vector,
			Payload: map[string]any{
				"item_id":      item.ID,
				"project_id":   item.ProjectID,
				"content_type": item.ContentType,
			},
		}},
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	err := c.execute(ctx, "qdrant_upsert", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPut, url, reqBody, nil, "upsert")
	})
	return wrapTemporaryIfNeeded("qdrant upsert", err)
}

func (c *Client) Delete(ctx context.Context, itemID int64) error {
	reqBody := map[string]any{"points": []int64{itemID}}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	err := c.execute(ctx, "qdrant_delete", func(ctx context.Context) error {
		err := c.doJSON(ctx, http.MethodPost, url, reqBody, nil, "delete")
		if isStatus(err, http.StatusNotFound) {
			return nil
		}
		return err
	})
	return wrapTemporaryIfNeeded("qdrant delete", err)
}

// Search returns up to k nearest item ids by cosine similarity. A missing
// collection yields no hits.
func (c *Client) Search(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": false,
	}

	var searchResp struct {
		Result []struct {
			ID    json.Number `json:"id"`
			Score float64     `json:"score"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	err := c.execute(ctx, "qdrant_search", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, url, reqBody, &searchResp, "search")
	})
	if isStatus(err, http.StatusNotFound) {
		return []domain.VectorHit{}, nil
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("qdrant search", err)
	}

	out := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		id, err := r.ID.Int64()
		if err != nil {
			continue
		}
		out = append(out, domain.VectorHit{ItemID: id, Score: r.Score})
	}
	return out, nil
}

// Reset drops the collection. It is recreated on the next upsert.
func (c *Client) Reset(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.doJSON(ctx, http.MethodDelete, url, nil, nil, "drop collection")
	if err != nil && !isStatus(err, http.StatusNotFound) {
		return wrapTemporaryIfNeeded("qdrant reset", err)
	}

	c.ensureMu.Lock()
	c.ensuredCollection = false
	c.ensuredVectorSize = 0
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyQdrantError)
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any, out any, operation string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return newHTTPStatusError(operation, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.execute(ctx, "qdrant_ensure_collection", func(ctx context.Context) error {
		err := c.doJSON(ctx, http.MethodPut, url, reqBody, nil, "ensure collection")
		// 409 when the collection already exists.
		if isStatus(err, http.StatusConflict) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	c.ensureMu.Unlock()
	return nil
}
