package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

// SemanticStage ranks items by vector similarity to the query.
type SemanticStage struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	items    ports.ItemRepository
}

func NewSemanticStage(embedder ports.Embedder, index ports.VectorIndex, items ports.ItemRepository) *SemanticStage {
	return &SemanticStage{
		embedder: embedder,
		index:    index,
		items:    items,
	}
}

// Search over-fetches 2*limit neighbours, filters them in process and
// keeps the index order. Fewer than limit results is not retried.
func (s *SemanticStage) Search(ctx context.Context, query string, limit int, filter StageFilter) ([]domain.ContextItem, error) {
	if limit <= 0 {
		return []domain.ContextItem{}, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, 2*limit)
	if err != nil {
		return nil, fmt.Errorf("search vector index: %w", err)
	}
	if len(hits) == 0 {
		return []domain.ContextItem{}, nil
	}

	ids := make([]int64, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ItemID)
	}
	records, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load semantic hits: %w", err)
	}
	byID := make(map[int64]domain.ContextItem, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	out := make([]domain.ContextItem, 0, limit)
	for _, hit := range hits {
		item, ok := byID[hit.ItemID]
		if !ok || !filter.matches(item) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// KeywordStage matches the query as a case-insensitive substring of
// title or content. Matches keep the store's insertion order.
type KeywordStage struct {
	items ports.ItemRepository
}

func NewKeywordStage(items ports.ItemRepository) *KeywordStage {
	return &KeywordStage{items: items}
}

// Search with a blank query lists every item that passes the filter.
func (s *KeywordStage) Search(ctx context.Context, query string, limit int, filter StageFilter) ([]domain.ContextItem, error) {
	if limit <= 0 {
		return []domain.ContextItem{}, nil
	}

	all, err := s.items.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}

	needle := ""
	if strings.TrimSpace(query) != "" {
		needle = strings.ToLower(query)
	}

	out := make([]domain.ContextItem, 0, limit)
	for _, item := range all {
		if needle != "" &&
			!strings.Contains(strings.ToLower(item.Title), needle) &&
			!strings.Contains(strings.ToLower(item.Content), needle) {
			continue
		}
		if !filter.matches(item) {
			continue
		}
		out = append(out, item)
	}
	return trimItems(out, limit), nil
}
