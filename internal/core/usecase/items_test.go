package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/context-store/internal/core/domain"
)

func newItemUseCaseForTest(repo *itemRepoFake, index *vectorIndexFake, embedder *embedderFake, queue *reindexQueueFake) *ItemUseCase {
	if queue == nil {
		return NewItemUseCase(repo, index, embedder, nil, discardLogger())
	}
	return NewItemUseCase(repo, index, embedder, queue, discardLogger())
}

func TestItemCreateEmbedsStoresAndIndexes(t *testing.T) {
	repo := newItemRepoFake()
	index := &vectorIndexFake{}
	embedder := &embedderFake{}
	uc := newItemUseCaseForTest(repo, index, embedder, nil)

	got, err := uc.Create(context.Background(), domain.ItemDraft{
		Title:   "Go tips",
		Content: "use errgroup",
		Tags:    []string{" go ", "go", ""},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}
	if got.ContentType != domain.ContentTypeText {
		t.Fatalf("expected default content type, got %q", got.ContentType)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "go" {
		t.Fatalf("expected normalized tags, got %v", got.Tags)
	}
	if got.ExtraMetadata == nil {
		t.Fatalf("expected empty metadata map")
	}
	if index.upserted[got.ID] != 1 {
		t.Fatalf("expected one vector upsert, got %d", index.upserted[got.ID])
	}
	if len(embedder.queries) != 1 || embedder.queries[0] != "Go tips use errgroup" {
		t.Fatalf("expected title+content embedding, got %v", embedder.queries)
	}
}

func TestItemCreateRejectsBlankFields(t *testing.T) {
	uc := newItemUseCaseForTest(newItemRepoFake(), &vectorIndexFake{}, &embedderFake{}, nil)
	_, err := uc.Create(context.Background(), domain.ItemDraft{Title: " ", Content: "x"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestItemCreateEmbedFailureWritesNothing(t *testing.T) {
	repo := newItemRepoFake()
	uc := newItemUseCaseForTest(repo, &vectorIndexFake{}, &embedderFake{err: errors.New("down")}, nil)

	if _, err := uc.Create(context.Background(), domain.ItemDraft{Title: "t", Content: "c"}); err == nil {
		t.Fatalf("expected embed error")
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no row on embed failure")
	}
}

func TestItemCreateDefersIndexToQueue(t *testing.T) {
	repo := newItemRepoFake()
	queue := &reindexQueueFake{}
	uc := newItemUseCaseForTest(repo, &vectorIndexFake{upsertErr: errors.New("qdrant down")}, &embedderFake{}, queue)

	got, err := uc.Create(context.Background(), domain.ItemDraft{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("expected deferred index to succeed, got %v", err)
	}
	if len(queue.published) != 1 || queue.published[0] != got.ID {
		t.Fatalf("expected reindex event for %d, got %v", got.ID, queue.published)
	}
	if _, ok := repo.items[got.ID]; !ok {
		t.Fatalf("expected row to be kept")
	}
}

func TestItemCreateIndexAndQueueFailureIsTemporary(t *testing.T) {
	queue := &reindexQueueFake{err: errors.New("nats down")}
	uc := newItemUseCaseForTest(newItemRepoFake(), &vectorIndexFake{upsertErr: errors.New("qdrant down")}, &embedderFake{}, queue)

	got, err := uc.Create(context.Background(), domain.ItemDraft{Title: "t", Content: "c"})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if got == nil || got.ID == 0 {
		t.Fatalf("expected stored item to be returned with the error")
	}
}

func TestItemUpdateReembedsOnlyOnTextChange(t *testing.T) {
	repo := newItemRepoFake(item(1, "title"))
	index := &vectorIndexFake{}
	embedder := &embedderFake{}
	uc := newItemUseCaseForTest(repo, index, embedder, nil)

	tags := []string{"x"}
	got, err := uc.Update(context.Background(), 1, domain.ItemPatch{Tags: &tags})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.UpdatedAt == nil {
		t.Fatalf("expected updated_at to be set")
	}
	if len(embedder.queries) != 0 || index.upserted[1] != 0 {
		t.Fatalf("tags-only patch must not re-embed")
	}

	title := "new title"
	if _, err := uc.Update(context.Background(), 1, domain.ItemPatch{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(embedder.queries) != 1 || index.upserted[1] != 1 {
		t.Fatalf("expected re-embed and upsert after title change")
	}
	if repo.items[1].ID != 1 || repo.items[1].Title != "new title" {
		t.Fatalf("expected in-place update keeping id, got %+v", repo.items[1])
	}
}

func TestItemGetHidesInactive(t *testing.T) {
	inactive := item(1, "t")
	inactive.IsActive = false
	uc := newItemUseCaseForTest(newItemRepoFake(inactive), &vectorIndexFake{}, &embedderFake{}, nil)

	_, err := uc.Get(context.Background(), 1)
	if !domain.IsKind(err, domain.ErrItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = uc.Get(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestItemDeleteSoftAndHard(t *testing.T) {
	repo := newItemRepoFake(item(1, "a"), item(2, "b"))
	index := &vectorIndexFake{}
	uc := newItemUseCaseForTest(repo, index, &embedderFake{}, nil)

	if err := uc.Delete(context.Background(), 1, false); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if repo.items[1].IsActive {
		t.Fatalf("expected item 1 deactivated")
	}
	if len(index.deleted) != 0 {
		t.Fatalf("soft delete must keep the vector")
	}
	if err := uc.Delete(context.Background(), 1, false); !domain.IsKind(err, domain.ErrItemNotFound) {
		t.Fatalf("expected not found on second soft delete, got %v", err)
	}

	if err := uc.Delete(context.Background(), 2, true); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	if _, ok := repo.items[2]; ok {
		t.Fatalf("expected row 2 removed")
	}
	if len(index.deleted) != 1 || index.deleted[0] != 2 {
		t.Fatalf("expected vector 2 removed, got %v", index.deleted)
	}
}

func TestItemListValidatesLimit(t *testing.T) {
	uc := newItemUseCaseForTest(newItemRepoFake(), &vectorIndexFake{}, &embedderFake{}, nil)
	if _, err := uc.List(context.Background(), domain.ItemListFilter{Limit: 101}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
