package httpadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/kirillkom/context-store/internal/config"
	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/observability/metrics"
)

type itemServiceFake struct {
	items      map[int64]domain.ContextItem
	nextID     int64
	err        error
	lastFilter domain.ItemListFilter
	lastPatch  domain.ItemPatch
	deleted    map[int64]bool
}

func newItemServiceFake() *itemServiceFake {
	return &itemServiceFake{items: map[int64]domain.ContextItem{}, deleted: map[int64]bool{}}
}

func (f *itemServiceFake) Create(_ context.Context, draft domain.ItemDraft) (*domain.ContextItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	f.nextID++
	item := domain.ContextItem{
		ID:          f.nextID,
		Title:       draft.Title,
		Content:     draft.Content,
		ContentType: domain.NormalizeContentType(draft.ContentType),
		Tags:        domain.NormalizeTags(draft.Tags),
		IsActive:    true,
		CreatedAt:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	f.items[item.ID] = item
	return &item, nil
}

func (f *itemServiceFake) Get(_ context.Context, id int64) (*domain.ContextItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrItemNotFound, "get item", fmt.Errorf("id=%d", id))
	}
	return &item, nil
}

func (f *itemServiceFake) List(_ context.Context, filter domain.ItemListFilter) ([]domain.ContextItem, error) {
	f.lastFilter = filter
	return []domain.ContextItem{}, f.err
}

func (f *itemServiceFake) Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.ContextItem, error) {
	f.lastPatch = patch
	item, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := patch.Apply(item); err != nil {
		return nil, err
	}
	f.items[id] = *item
	return item, nil
}

func (f *itemServiceFake) Delete(ctx context.Context, id int64, hard bool) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	f.deleted[id] = hard
	return nil
}

type projectServiceFake struct {
	err     error
	created []domain.ProjectDraft
}

func (f *projectServiceFake) Create(_ context.Context, draft domain.ProjectDraft) (*domain.ContextProject, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, draft)
	return &domain.ContextProject{ID: "p-1", Name: draft.Name, Settings: map[string]any{}, IsActive: true}, nil
}

func (f *projectServiceFake) Get(_ context.Context, id string) (*domain.ContextProject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ContextProject{ID: id, Name: "Infra", IsActive: true}, nil
}

func (f *projectServiceFake) List(context.Context, domain.Page) ([]domain.ContextProject, error) {
	return []domain.ContextProject{}, f.err
}

func (f *projectServiceFake) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.ContextProject, error) {
	project, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (f *projectServiceFake) Delete(context.Context, string, bool) error {
	return f.err
}

type searchServiceFake struct {
	last  domain.SearchQuery
	calls int
	err   error
}

func (f *searchServiceFake) Search(_ context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	f.calls++
	f.last = query
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchResult{
		Items:      []domain.ScoredItem{},
		SearchType: query.SearchType,
		Query:      query.Query,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}, nil
}

type statsServiceFake struct {
	projectID string
}

func (f *statsServiceFake) Stats(_ context.Context, projectID string) (*domain.ContextStats, error) {
	f.projectID = projectID
	return &domain.ContextStats{TotalItems: 3, ActiveItems: 2, ContentTypes: map[string]int{"text": 2}}, nil
}

func (f *statsServiceFake) DatabaseInfo(context.Context) (*domain.DatabaseInfo, error) {
	return &domain.DatabaseInfo{Backend: "postgres", VectorBackend: "qdrant"}, nil
}

type transferServiceFake struct {
	bundle   *domain.ExportBundle
	imported *domain.ExportBundle
	wiped    bool
}

func (f *transferServiceFake) Export(context.Context) (*domain.ExportBundle, error) {
	return f.bundle, nil
}

func (f *transferServiceFake) ExportInfo(context.Context) (*domain.ExportSummary, error) {
	return &domain.ExportSummary{TotalItems: len(f.bundle.ContextItems), ExportAvailable: true}, nil
}

func (f *transferServiceFake) Import(_ context.Context, bundle *domain.ExportBundle) (*domain.ImportReport, error) {
	f.imported = bundle
	return &domain.ImportReport{
		Message:       "Import completed",
		ImportedItems: len(bundle.ContextItems),
		Errors:        []string{},
	}, nil
}

func (f *transferServiceFake) Wipe(context.Context) (*domain.WipeReport, error) {
	f.wiped = true
	return &domain.WipeReport{Message: "Database wiped"}, nil
}

type uploadServiceFake struct {
	req  domain.UploadRequest
	body string
}

func (f *uploadServiceFake) Upload(_ context.Context, req domain.UploadRequest, body io.Reader) ([]domain.ContextItem, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.req = req
	f.body = string(raw)
	return []domain.ContextItem{{ID: 1, Title: req.Filename}}, nil
}

type reindexServiceFake struct {
	scheduled int
}

func (f *reindexServiceFake) ReindexByID(context.Context, int64) error { return nil }

func (f *reindexServiceFake) ScheduleAll(context.Context) (int, error) { return f.scheduled, nil }

func (f *reindexServiceFake) ActiveItemIDs(context.Context) ([]int64, error) { return nil, nil }

type testServices struct {
	items    *itemServiceFake
	projects *projectServiceFake
	search   *searchServiceFake
	stats    *statsServiceFake
	transfer *transferServiceFake
	upload   *uploadServiceFake
	reindex  *reindexServiceFake
}

func newTestServices() *testServices {
	return &testServices{
		items:    newItemServiceFake(),
		projects: &projectServiceFake{},
		search:   &searchServiceFake{},
		stats:    &statsServiceFake{},
		transfer: &transferServiceFake{bundle: &domain.ExportBundle{
			ExportInfo:   domain.ExportInfo{Version: domain.ExportVersion},
			ContextItems: []domain.ExportedItem{},
			Projects:     []domain.ExportedProject{},
		}},
		upload:  &uploadServiceFake{},
		reindex: &reindexServiceFake{},
	}
}

func (s *testServices) services() Services {
	return Services{
		Items:    s.items,
		Projects: s.projects,
		Search:   s.search,
		Stats:    s.stats,
		Transfer: s.transfer,
		Upload:   s.upload,
		Reindex:  s.reindex,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		APIValidateRequests: true,
		UploadMaxBytes:      1 << 20,
	}
}

func newTestHandler(t *testing.T, cfg config.Config, services *testServices) http.Handler {
	t.Helper()
	rt, err := NewRouter(cfg, services.services(), metrics.NewHTTPServerMetrics("api"), quietLogger())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return rt.Handler()
}
