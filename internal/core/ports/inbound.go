package ports

import (
	"context"
	"io"

	"github.com/kirillkom/context-store/internal/core/domain"
)

// ItemService is the inbound contract for context item CRUD.
type ItemService interface {
	Create(ctx context.Context, draft domain.ItemDraft) (*domain.ContextItem, error)
	Get(ctx context.Context, id int64) (*domain.ContextItem, error)
	List(ctx context.Context, filter domain.ItemListFilter) ([]domain.ContextItem, error)
	Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.ContextItem, error)
	Delete(ctx context.Context, id int64, hard bool) error
}

// ProjectService is the inbound contract for project CRUD.
type ProjectService interface {
	Create(ctx context.Context, draft domain.ProjectDraft) (*domain.ContextProject, error)
	Get(ctx context.Context, id string) (*domain.ContextProject, error)
	List(ctx context.Context, page domain.Page) ([]domain.ContextProject, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.ContextProject, error)
	Delete(ctx context.Context, id string, hard bool) error
}

// SearchService runs semantic, keyword and hybrid searches.
type SearchService interface {
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
}

// StatsService reports store statistics.
type StatsService interface {
	Stats(ctx context.Context, projectID string) (*domain.ContextStats, error)
	DatabaseInfo(ctx context.Context) (*domain.DatabaseInfo, error)
}

// TransferService exports, imports and wipes the store.
type TransferService interface {
	Export(ctx context.Context) (*domain.ExportBundle, error)
	ExportInfo(ctx context.Context) (*domain.ExportSummary, error)
	Import(ctx context.Context, bundle *domain.ExportBundle) (*domain.ImportReport, error)
	Wipe(ctx context.Context) (*domain.WipeReport, error)
}

// UploadService turns uploaded files into context items.
type UploadService interface {
	Upload(ctx context.Context, req domain.UploadRequest, body io.Reader) ([]domain.ContextItem, error)
}

// ReindexService recomputes item vectors.
type ReindexService interface {
	ReindexByID(ctx context.Context, id int64) error
	ScheduleAll(ctx context.Context) (int, error)
	ActiveItemIDs(ctx context.Context) ([]int64, error)
}
