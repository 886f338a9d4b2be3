package ports

import (
	"context"
	"io"

	"github.com/kirillkom/context-store/internal/core/domain"
)

// ItemRepository persists context items. Ids are assigned by the store.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.ContextItem) error
	GetByID(ctx context.Context, id int64) (*domain.ContextItem, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.ContextItem, error)
	Update(ctx context.Context, item *domain.ContextItem) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ItemListFilter) ([]domain.ContextItem, error)
	ScanAll(ctx context.Context) ([]domain.ContextItem, error)
	Stats(ctx context.Context, projectID string) (domain.ItemCounts, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.ContextProject) error
	GetByID(ctx context.Context, id string) (*domain.ContextProject, error)
	GetByName(ctx context.Context, name string) (*domain.ContextProject, error)
	List(ctx context.Context, page domain.Page) ([]domain.ContextProject, error)
	Update(ctx context.Context, project *domain.ContextProject) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// VectorIndex stores one vector per item id and answers nearest-neighbour queries.
type VectorIndex interface {
	Upsert(ctx context.Context, item *domain.ContextItem, vector []float32) error
	Delete(ctx context.Context, itemID int64) error
	Search(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error)
	Reset(ctx context.Context) error
}

// Embedder builds fixed-dimension vectors for item and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// ReindexQueue publishes/consumes item reindex events.
type ReindexQueue interface {
	PublishReindex(ctx context.Context, itemID int64) error
	SubscribeReindex(ctx context.Context, handler func(context.Context, int64) error) error
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor extracts plain text from a stored file.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.StoredFile) (string, error)
}

// Chunker splits text into item-sized parts.
type Chunker interface {
	Split(text string) []string
}
