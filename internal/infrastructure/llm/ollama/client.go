package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/context-store/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

// New builds an ollama HTTP client. executor may be nil.
func New(baseURL, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Model() string {
	return c.embedModel
}

// Embedder produces fixed-dimension vectors with an ollama embedding model.
type Embedder struct {
	client    *Client
	dimension int
}

func NewEmbedder(client *Client, dimension int) *Embedder {
	return &Embedder{client: client, dimension: dimension}
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	call := func(ctx context.Context) error {
		return e.client.postJSON(ctx, "/api/embed", request, &response, "embed")
	}

	var err error
	if e.client.executor != nil {
		err = e.client.executor.Execute(ctx, "ollama_embed", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ollama embed", err)
	}

	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed returned %d vectors for %d inputs", len(response.Embeddings), len(texts))
	}
	for i, vector := range response.Embeddings {
		if e.dimension > 0 && len(vector) != e.dimension {
			return nil, fmt.Errorf("ollama embed vector %d has dimension %d, want %d", i, len(vector), e.dimension)
		}
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}
