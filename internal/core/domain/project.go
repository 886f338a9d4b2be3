package domain

import (
	"errors"
	"strings"
	"time"
)

// ContextProject groups items. Items reference projects by id only.
type ContextProject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Settings    map[string]any `json:"settings"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
}

type ProjectDraft struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Settings    map[string]any `json:"settings"`
}

func (d ProjectDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return WrapError(ErrInvalidInput, "validate project", errors.New("name is required"))
	}
	return nil
}

type ProjectPatch struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Settings    *map[string]any `json:"settings"`
}

func (p ProjectPatch) Apply(project *ContextProject) error {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return WrapError(ErrInvalidInput, "apply project patch", errors.New("name must not be blank"))
		}
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Settings != nil {
		project.Settings = *p.Settings
		if project.Settings == nil {
			project.Settings = map[string]any{}
		}
	}
	return nil
}

// Page is a limit/offset window used by listings.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Normalize() (Page, error) {
	out := p
	if out.Limit == 0 {
		out.Limit = DefaultListLimit
	}
	if out.Limit < 0 || out.Limit > MaxListLimit {
		return out, WrapError(ErrInvalidInput, "page", errors.New("limit must be between 1 and 100"))
	}
	if out.Offset < 0 {
		return out, WrapError(ErrInvalidInput, "page", errors.New("offset must be >= 0"))
	}
	return out, nil
}
