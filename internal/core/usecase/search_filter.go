package usecase

import "github.com/kirillkom/context-store/internal/core/domain"

// StageFilter holds the scalar filters applied inside a search stage.
type StageFilter struct {
	ActiveOnly   bool
	ProjectID    string
	ContentTypes []string
}

func (f StageFilter) matches(item domain.ContextItem) bool {
	if f.ActiveOnly && !item.IsActive {
		return false
	}
	if f.ProjectID != "" && item.ProjectID != f.ProjectID {
		return false
	}
	if len(f.ContentTypes) > 0 && !containsString(f.ContentTypes, item.ContentType) {
		return false
	}
	return true
}

// filterAndPage narrows an already ranked list by content type set and
// tags (any requested tag matches), then slices [offset, offset+limit).
// total is counted before slicing.
func filterAndPage(items []domain.ScoredItem, contentTypes, tags []string, offset, limit int) ([]domain.ScoredItem, int) {
	filtered := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		if len(contentTypes) > 0 && !containsString(contentTypes, item.ContentType) {
			continue
		}
		if len(tags) > 0 && !item.HasAnyTag(tags) {
			continue
		}
		filtered = append(filtered, item)
	}

	total := len(filtered)
	if offset >= total || limit <= 0 {
		return []domain.ScoredItem{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total
}

func trimItems(items []domain.ContextItem, limit int) []domain.ContextItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
