package usecase

import (
	"sort"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type fusedCandidate struct {
	item     domain.ContextItem
	semantic float64
	keyword  float64
	combined float64
}

// fuseRankings merges two independently ranked lists by position. Each
// list scores its i-th item 1-i/n; an item missing from a list scores 0
// there. Ties keep first-seen order: semantic rank first, then keyword-only
// items in keyword order.
func fuseRankings(semantic, keyword []domain.ContextItem, semanticWeight float64) []domain.ScoredItem {
	semanticWeight = clampWeight(semanticWeight)

	acc := make(map[int64]*fusedCandidate, len(semantic)+len(keyword))
	order := make([]int64, 0, len(semantic)+len(keyword))

	addList := func(items []domain.ContextItem, assign func(*fusedCandidate, float64)) {
		items = dedupeByID(items)
		n := float64(len(items))
		for rank, item := range items {
			candidate, ok := acc[item.ID]
			if !ok {
				candidate = &fusedCandidate{item: item}
				acc[item.ID] = candidate
				order = append(order, item.ID)
			}
			assign(candidate, 1-float64(rank)/n)
		}
	}

	addList(semantic, func(c *fusedCandidate, score float64) { c.semantic = score })
	addList(keyword, func(c *fusedCandidate, score float64) { c.keyword = score })

	fused := make([]*fusedCandidate, 0, len(order))
	for _, id := range order {
		c := acc[id]
		c.combined = semanticWeight*c.semantic + (1-semanticWeight)*c.keyword
		fused = append(fused, c)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].combined > fused[j].combined
	})

	out := make([]domain.ScoredItem, 0, len(fused))
	for _, c := range fused {
		score := c.combined
		out = append(out, domain.ScoredItem{ContextItem: c.item, CombinedScore: &score})
	}
	return out
}

// dedupeByID keeps the first occurrence of each id.
func dedupeByID(items []domain.ContextItem) []domain.ContextItem {
	seen := make(map[int64]struct{}, len(items))
	out := make([]domain.ContextItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

func clampWeight(w float64) float64 {
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}

func unscored(items []domain.ContextItem) []domain.ScoredItem {
	out := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.ScoredItem{ContextItem: item})
	}
	return out
}
