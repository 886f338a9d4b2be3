package domain

import (
	"errors"
	"fmt"
	"strings"
)

type SearchType string

const (
	SearchSemantic SearchType = "semantic"
	SearchKeyword  SearchType = "keyword"
	SearchHybrid   SearchType = "hybrid"

	DefaultSemanticWeight = 0.7
	DefaultSearchLimit    = 50
	MaxSearchLimit        = 100
)

func ParseSearchType(raw string) (SearchType, error) {
	switch SearchType(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return SearchHybrid, nil
	case SearchSemantic:
		return SearchSemantic, nil
	case SearchKeyword:
		return SearchKeyword, nil
	case SearchHybrid:
		return SearchHybrid, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse search type", fmt.Errorf("unsupported search type %q", raw))
	}
}

type SearchFilters struct {
	ContentTypes []string `json:"content_types,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ProjectID    string   `json:"project_id,omitempty"`
}

type SearchQuery struct {
	Query          string        `json:"query"`
	SearchType     SearchType    `json:"search_type"`
	Filters        SearchFilters `json:"filters"`
	Limit          int           `json:"limit"`
	Offset         int           `json:"offset"`
	SemanticWeight *float64      `json:"semantic_weight,omitempty"`
}

// Normalize fills defaults and rejects out-of-range values.
func (q SearchQuery) Normalize() (SearchQuery, error) {
	out := q
	searchType, err := ParseSearchType(string(q.SearchType))
	if err != nil {
		return out, err
	}
	out.SearchType = searchType

	if out.Limit == 0 {
		out.Limit = DefaultSearchLimit
	}
	if out.Limit < 0 || out.Limit > MaxSearchLimit {
		return out, WrapError(ErrInvalidInput, "normalize search query", errors.New("limit must be between 1 and 100"))
	}
	if out.Offset < 0 {
		return out, WrapError(ErrInvalidInput, "normalize search query", errors.New("offset must be >= 0"))
	}

	weight := DefaultSemanticWeight
	if q.SemanticWeight != nil {
		weight = *q.SemanticWeight
	}
	if weight < 0 || weight > 1 {
		return out, WrapError(ErrInvalidInput, "normalize search query", errors.New("semantic_weight must be within [0,1]"))
	}
	out.SemanticWeight = &weight

	out.Filters.ContentTypes = NormalizeTags(q.Filters.ContentTypes)
	out.Filters.Tags = NormalizeTags(q.Filters.Tags)
	out.Filters.ProjectID = strings.TrimSpace(q.Filters.ProjectID)
	return out, nil
}

// Weight returns the semantic weight, falling back to the default.
func (q SearchQuery) Weight() float64 {
	if q.SemanticWeight == nil {
		return DefaultSemanticWeight
	}
	return *q.SemanticWeight
}

type SearchResult struct {
	Items           []ScoredItem `json:"items"`
	Total           int          `json:"total"`
	Limit           int          `json:"limit"`
	Offset          int          `json:"offset"`
	SearchType      SearchType   `json:"search_type"`
	Query           string       `json:"query"`
	ExecutionTimeMs float64      `json:"execution_time_ms"`
	Degraded        bool         `json:"degraded,omitempty"`
}

// VectorHit is one nearest-neighbour match from a vector index.
type VectorHit struct {
	ItemID int64
	Score  float64
}
