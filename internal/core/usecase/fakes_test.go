package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type itemRepoFake struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]domain.ContextItem
	scanErr error
	getErr  error
	scans   int
}

func newItemRepoFake(items ...domain.ContextItem) *itemRepoFake {
	repo := &itemRepoFake{items: map[int64]domain.ContextItem{}}
	for _, item := range items {
		repo.items[item.ID] = item
		if item.ID > repo.nextID {
			repo.nextID = item.ID
		}
	}
	return repo
}

func (f *itemRepoFake) Create(_ context.Context, item *domain.ContextItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item.ID = f.nextID
	f.items[item.ID] = *item
	return nil
}

func (f *itemRepoFake) GetByID(_ context.Context, id int64) (*domain.ContextItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrItemNotFound, "get item", fmt.Errorf("id=%d", id))
	}
	return &item, nil
}

func (f *itemRepoFake) GetByIDs(_ context.Context, ids []int64) ([]domain.ContextItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]domain.ContextItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *itemRepoFake) Update(_ context.Context, item *domain.ContextItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[item.ID]
	if !ok || !current.IsActive {
		return domain.WrapError(domain.ErrItemNotFound, "update item", fmt.Errorf("id=%d", item.ID))
	}
	now := time.Now().UTC()
	item.UpdatedAt = &now
	f.items[item.ID] = *item
	return nil
}

func (f *itemRepoFake) SetActive(_ context.Context, id int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return domain.WrapError(domain.ErrItemNotFound, "set active", fmt.Errorf("id=%d", id))
	}
	item.IsActive = active
	f.items[id] = item
	return nil
}

func (f *itemRepoFake) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return domain.WrapError(domain.ErrItemNotFound, "delete item", fmt.Errorf("id=%d", id))
	}
	delete(f.items, id)
	return nil
}

func (f *itemRepoFake) List(_ context.Context, filter domain.ItemListFilter) ([]domain.ContextItem, error) {
	all, _ := f.ScanAll(context.Background())
	out := make([]domain.ContextItem, 0, len(all))
	for _, item := range all {
		if !item.IsActive {
			continue
		}
		if filter.ProjectID != "" && item.ProjectID != filter.ProjectID {
			continue
		}
		if filter.ContentType != "" && item.ContentType != filter.ContentType {
			continue
		}
		if len(filter.Tags) > 0 && !item.HasAnyTag(filter.Tags) {
			continue
		}
		out = append(out, item)
	}
	if filter.Offset >= len(out) {
		return []domain.ContextItem{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *itemRepoFake) ScanAll(context.Context) ([]domain.ContextItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	out := make([]domain.ContextItem, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *itemRepoFake) Stats(_ context.Context, projectID string) (domain.ItemCounts, error) {
	all, _ := f.ScanAll(context.Background())
	counts := domain.ItemCounts{ContentTypes: map[string]int{}}
	for _, item := range all {
		if projectID != "" && item.ProjectID != projectID {
			continue
		}
		counts.Total++
		if item.IsActive {
			counts.Active++
			counts.ContentTypes[item.ContentType]++
		}
	}
	return counts, nil
}

func (f *itemRepoFake) DeleteAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.items))
	f.items = map[int64]domain.ContextItem{}
	return n, nil
}

type projectRepoFake struct {
	mu       sync.Mutex
	projects map[string]domain.ContextProject
	order    []string
}

func newProjectRepoFake(projects ...domain.ContextProject) *projectRepoFake {
	repo := &projectRepoFake{projects: map[string]domain.ContextProject{}}
	for _, p := range projects {
		repo.projects[p.ID] = p
		repo.order = append(repo.order, p.ID)
	}
	return repo
}

func (f *projectRepoFake) Create(_ context.Context, project *domain.ContextProject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[project.ID]; ok {
		return domain.WrapError(domain.ErrConflict, "create project", fmt.Errorf("id=%s", project.ID))
	}
	f.projects[project.ID] = *project
	f.order = append(f.order, project.ID)
	return nil
}

func (f *projectRepoFake) GetByID(_ context.Context, id string) (*domain.ContextProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrProjectNotFound, "get project", fmt.Errorf("id=%s", id))
	}
	return &p, nil
}

func (f *projectRepoFake) GetByName(_ context.Context, name string) (*domain.ContextProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		p, ok := f.projects[id]
		if ok && p.IsActive && p.Name == name {
			return &p, nil
		}
	}
	return nil, domain.WrapError(domain.ErrProjectNotFound, "get project by name", fmt.Errorf("name=%s", name))
}

func (f *projectRepoFake) List(_ context.Context, page domain.Page) ([]domain.ContextProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ContextProject, 0, len(f.order))
	for _, id := range f.order {
		if p, ok := f.projects[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	if page.Offset >= len(out) {
		return []domain.ContextProject{}, nil
	}
	out = out[page.Offset:]
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (f *projectRepoFake) Update(_ context.Context, project *domain.ContextProject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.projects[project.ID]
	if !ok || !current.IsActive {
		return domain.WrapError(domain.ErrProjectNotFound, "update project", fmt.Errorf("id=%s", project.ID))
	}
	f.projects[project.ID] = *project
	return nil
}

func (f *projectRepoFake) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return domain.WrapError(domain.ErrProjectNotFound, "set project active", fmt.Errorf("id=%s", id))
	}
	p.IsActive = active
	f.projects[id] = p
	return nil
}

func (f *projectRepoFake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return domain.WrapError(domain.ErrProjectNotFound, "delete project", fmt.Errorf("id=%s", id))
	}
	delete(f.projects, id)
	return nil
}

func (f *projectRepoFake) CountActive(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.projects {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *projectRepoFake) DeleteAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.projects))
	f.projects = map[string]domain.ContextProject{}
	f.order = nil
	return n, nil
}

type embedderFake struct {
	mu      sync.Mutex
	err     error
	queries []string
	texts   []string
	dim     int
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, texts...)
	out := make([][]float32, 0, len(texts))
	for range texts {
		out = append(out, []float32{0.1, 0.2, 0.3})
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *embedderFake) Dimension() int {
	if f.dim == 0 {
		return 3
	}
	return f.dim
}

type vectorIndexFake struct {
	mu        sync.Mutex
	hits      []domain.VectorHit
	searchErr error
	upsertErr error
	k         int
	upserted  map[int64]int
	deleted   []int64
	resets    int
}

func (f *vectorIndexFake) Upsert(_ context.Context, item *domain.ContextItem, _ []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.upserted == nil {
		f.upserted = map[int64]int{}
	}
	f.upserted[item.ID]++
	return nil
}

func (f *vectorIndexFake) Delete(_ context.Context, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, itemID)
	return nil
}

func (f *vectorIndexFake) Search(_ context.Context, _ []float32, k int) ([]domain.VectorHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.k = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *vectorIndexFake) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

type reindexQueueFake struct {
	mu        sync.Mutex
	published []int64
	err       error
}

func (f *reindexQueueFake) PublishReindex(_ context.Context, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, itemID)
	return nil
}

func (f *reindexQueueFake) SubscribeReindex(context.Context, func(context.Context, int64) error) error {
	return errors.New("not supported in tests")
}

type stageFake struct {
	mu     sync.Mutex
	items  []domain.ContextItem
	err    error
	limit  int
	filter StageFilter
	calls  int
}

func (f *stageFake) Search(_ context.Context, _ string, limit int, filter StageFilter) ([]domain.ContextItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.limit = limit
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return trimItems(f.items, limit), nil
}

func item(id int64, title string) domain.ContextItem {
	return domain.ContextItem{
		ID:            id,
		Title:         title,
		Content:       title + " content",
		ContentType:   domain.ContentTypeText,
		Tags:          []string{},
		ExtraMetadata: map[string]any{},
		IsActive:      true,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(items []domain.ScoredItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
