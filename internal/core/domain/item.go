package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	ContentTypeText     = "text"
	ContentTypeCode     = "code"
	ContentTypeMarkdown = "markdown"
	ContentTypeJSON     = "json"

	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ContextItem is a stored unit of knowledge. Vector is derived from
// title and content and never accepted from callers.
type ContextItem struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	ContentType   string         `json:"content_type"`
	Tags          []string       `json:"tags"`
	ExtraMetadata map[string]any `json:"extra_metadata"`
	Source        string         `json:"source,omitempty"`
	ProjectID     string         `json:"project_id,omitempty"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at"`
	Vector        []float32      `json:"-"`
}

// EmbeddingText is the text the item vector is computed from.
func (i ContextItem) EmbeddingText() string {
	return i.Title + " " + i.Content
}

// HasAnyTag reports whether any of tags is present on the item.
func (i ContextItem) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range i.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ScoredItem is a ContextItem in a search response. CombinedScore is set
// only by hybrid ranking.
type ScoredItem struct {
	ContextItem
	CombinedScore *float64 `json:"combined_score,omitempty"`
}

type ItemDraft struct {
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	ContentType   string         `json:"content_type"`
	Tags          []string       `json:"tags"`
	ExtraMetadata map[string]any `json:"extra_metadata"`
	Source        string         `json:"source"`
	ProjectID     string         `json:"project_id"`
}

func (d ItemDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return WrapError(ErrInvalidInput, "validate item", errors.New("title is required"))
	}
	if strings.TrimSpace(d.Content) == "" {
		return WrapError(ErrInvalidInput, "validate item", errors.New("content is required"))
	}
	return nil
}

// ItemPatch carries a partial update; nil fields are left unchanged.
type ItemPatch struct {
	Title         *string         `json:"title"`
	Content       *string         `json:"content"`
	ContentType   *string         `json:"content_type"`
	Tags          *[]string       `json:"tags"`
	ExtraMetadata *map[string]any `json:"extra_metadata"`
	Source        *string         `json:"source"`
	ProjectID     *string         `json:"project_id"`
}

// Apply mutates item and reports whether the embedded text changed.
func (p ItemPatch) Apply(item *ContextItem) (bool, error) {
	reembed := false
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return false, WrapError(ErrInvalidInput, "apply item patch", errors.New("title must not be blank"))
		}
		reembed = reembed || *p.Title != item.Title
		item.Title = *p.Title
	}
	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return false, WrapError(ErrInvalidInput, "apply item patch", errors.New("content must not be blank"))
		}
		reembed = reembed || *p.Content != item.Content
		item.Content = *p.Content
	}
	if p.ContentType != nil {
		item.ContentType = NormalizeContentType(*p.ContentType)
	}
	if p.Tags != nil {
		item.Tags = NormalizeTags(*p.Tags)
	}
	if p.ExtraMetadata != nil {
		item.ExtraMetadata = *p.ExtraMetadata
		if item.ExtraMetadata == nil {
			item.ExtraMetadata = map[string]any{}
		}
	}
	if p.Source != nil {
		item.Source = *p.Source
	}
	if p.ProjectID != nil {
		item.ProjectID = *p.ProjectID
	}
	return reembed, nil
}

// ItemListFilter narrows listing of active items. Tags match with OR.
type ItemListFilter struct {
	ProjectID   string
	ContentType string
	Tags        []string
	Limit       int
	Offset      int
}

func (f ItemListFilter) Normalize() (ItemListFilter, error) {
	out := f
	if out.Limit == 0 {
		out.Limit = DefaultListLimit
	}
	if out.Limit < 0 || out.Limit > MaxListLimit {
		return out, WrapError(ErrInvalidInput, "list items", errors.New("limit must be between 1 and 100"))
	}
	if out.Offset < 0 {
		return out, WrapError(ErrInvalidInput, "list items", errors.New("offset must be >= 0"))
	}
	out.Tags = NormalizeTags(out.Tags)
	return out, nil
}

func NormalizeContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ContentTypeText
	}
	return contentType
}

// NormalizeTags trims tags, drops blanks and keeps first occurrences.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// DecodeMetadata parses a stored metadata document. Malformed input
// yields an empty map.
func DecodeMetadata(raw string) map[string]any {
	out := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

func EncodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
