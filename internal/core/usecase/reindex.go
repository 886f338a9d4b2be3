package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

type ReindexUseCase struct {
	items    ports.ItemRepository
	index    ports.VectorIndex
	embedder ports.Embedder
	queue    ports.ReindexQueue
}

func NewReindexUseCase(
	items ports.ItemRepository,
	index ports.VectorIndex,
	embedder ports.Embedder,
	queue ports.ReindexQueue,
) *ReindexUseCase {
	return &ReindexUseCase{
		items:    items,
		index:    index,
		embedder: embedder,
		queue:    queue,
	}
}

// ReindexByID recomputes and stores the vector of one item. Inactive and
// missing items are skipped.
func (uc *ReindexUseCase) ReindexByID(ctx context.Context, id int64) error {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil
		}
		return fmt.Errorf("fetch item by id: %w", err)
	}
	if !item.IsActive {
		return nil
	}

	vector, err := uc.embedder.EmbedQuery(ctx, item.EmbeddingText())
	if err != nil {
		return fmt.Errorf("embed item: %w", err)
	}
	if err := uc.index.Upsert(ctx, item, vector); err != nil {
		return fmt.Errorf("upsert vector: %w", err)
	}
	return nil
}

// ScheduleAll publishes a reindex event for every active item.
func (uc *ReindexUseCase) ScheduleAll(ctx context.Context) (int, error) {
	if uc.queue == nil {
		return 0, fmt.Errorf("reindex queue is not configured")
	}
	ids, err := uc.ActiveItemIDs(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := uc.queue.PublishReindex(ctx, id); err != nil {
			return i, fmt.Errorf("publish reindex event for item %d: %w", id, err)
		}
	}
	return len(ids), nil
}

func (uc *ReindexUseCase) ActiveItemIDs(ctx context.Context) ([]int64, error) {
	all, err := uc.items.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	ids := make([]int64, 0, len(all))
	for _, item := range all {
		if item.IsActive {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}
