package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

type ItemUseCase struct {
	items    ports.ItemRepository
	index    ports.VectorIndex
	embedder ports.Embedder
	queue    ports.ReindexQueue
	logger   *slog.Logger
	now      func() time.Time
}

// NewItemUseCase builds the item service. queue may be nil, in which case a
// failed vector write is returned to the caller.
func NewItemUseCase(
	items ports.ItemRepository,
	index ports.VectorIndex,
	embedder ports.Embedder,
	queue ports.ReindexQueue,
	logger *slog.Logger,
) *ItemUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemUseCase{
		items:    items,
		index:    index,
		embedder: embedder,
		queue:    queue,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *ItemUseCase) Create(ctx context.Context, draft domain.ItemDraft) (*domain.ContextItem, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	meta := draft.ExtraMetadata
	if meta == nil {
		meta = map[string]any{}
	}
	item := &domain.ContextItem{
		Title:         draft.Title,
		Content:       draft.Content,
		ContentType:   domain.NormalizeContentType(draft.ContentType),
		Tags:          domain.NormalizeTags(draft.Tags),
		ExtraMetadata: meta,
		Source:        draft.Source,
		ProjectID:     draft.ProjectID,
		IsActive:      true,
		CreatedAt:     uc.now().UTC(),
	}

	vector, err := uc.embed(ctx, item)
	if err != nil {
		return nil, err
	}
	item.Vector = vector

	if err := uc.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := uc.indexOrDefer(ctx, item, vector); err != nil {
		return item, err
	}
	return item, nil
}

func (uc *ItemUseCase) Get(ctx context.Context, id int64) (*domain.ContextItem, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !item.IsActive {
		return nil, domain.WrapError(domain.ErrItemNotFound, "get item", fmt.Errorf("id=%d", id))
	}
	return item, nil
}

func (uc *ItemUseCase) List(ctx context.Context, filter domain.ItemListFilter) ([]domain.ContextItem, error) {
	normalized, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	items, err := uc.items.List(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Update applies patch in place. The vector is recomputed only when title
// or content changed.
func (uc *ItemUseCase) Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.ContextItem, error) {
	item, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reembed, err := patch.Apply(item)
	if err != nil {
		return nil, err
	}

	var vector []float32
	if reembed {
		vector, err = uc.embed(ctx, item)
		if err != nil {
			return nil, err
		}
		item.Vector = vector
	}

	now := uc.now().UTC()
	item.UpdatedAt = &now
	if err := uc.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if reembed {
		if err := uc.indexOrDefer(ctx, item, vector); err != nil {
			return item, err
		}
	}
	return item, nil
}

// Delete deactivates the item, or removes the row and its vector when hard is set.
func (uc *ItemUseCase) Delete(ctx context.Context, id int64, hard bool) error {
	if !hard {
		if _, err := uc.Get(ctx, id); err != nil {
			return err
		}
		if err := uc.items.SetActive(ctx, id, false); err != nil {
			return fmt.Errorf("deactivate item: %w", err)
		}
		return nil
	}

	if err := uc.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := uc.index.Delete(ctx, id); err != nil {
		uc.logger.Warn("vector_delete_failed", "item_id", id, "error", err)
	}
	return nil
}

func (uc *ItemUseCase) embed(ctx context.Context, item *domain.ContextItem) ([]float32, error) {
	vector, err := uc.embedder.EmbedQuery(ctx, item.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("embed item: %w", err)
	}
	return vector, nil
}

// indexOrDefer writes the vector. When the index is unavailable the row is
// kept and a reindex event is queued instead.
func (uc *ItemUseCase) indexOrDefer(ctx context.Context, item *domain.ContextItem, vector []float32) error {
	indexErr := uc.index.Upsert(ctx, item, vector)
	if indexErr == nil {
		return nil
	}

	uc.logger.Warn("vector_upsert_deferred", "item_id", item.ID, "error", indexErr)
	if uc.queue == nil {
		return domain.WrapError(domain.ErrTemporary, "index item",
			fmt.Errorf("item %d stored without vector: %w", item.ID, indexErr))
	}
	if err := uc.queue.PublishReindex(ctx, item.ID); err != nil {
		return domain.WrapError(domain.ErrTemporary, "index item",
			fmt.Errorf("item %d stored without vector: %w", item.ID, errors.Join(indexErr, err)))
	}
	return nil
}
