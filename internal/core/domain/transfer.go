package domain

import "time"

const ExportVersion = "1.0"

type ExportBundle struct {
	ExportInfo   ExportInfo        `json:"export_info" yaml:"export_info"`
	ContextItems []ExportedItem    `json:"context_items" yaml:"context_items"`
	Projects     []ExportedProject `json:"projects" yaml:"projects"`
}

type ExportInfo struct {
	ExportDate    time.Time `json:"export_date" yaml:"export_date"`
	Version       string    `json:"version" yaml:"version"`
	TotalItems    int       `json:"total_items" yaml:"total_items"`
	TotalProjects int       `json:"total_projects" yaml:"total_projects"`
}

type ExportedItem struct {
	ID            int64          `json:"id" yaml:"id"`
	Title         string         `json:"title" yaml:"title"`
	Content       string         `json:"content" yaml:"content"`
	ContentType   string         `json:"content_type" yaml:"content_type"`
	Tags          []string       `json:"tags" yaml:"tags"`
	ExtraMetadata map[string]any `json:"extra_metadata" yaml:"extra_metadata"`
	Source        string         `json:"source,omitempty" yaml:"source,omitempty"`
	ProjectID     string         `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type ExportedProject struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Settings    map[string]any `json:"settings" yaml:"settings"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type ExportSummary struct {
	TotalItems      int  `json:"total_items"`
	TotalProjects   int  `json:"total_projects"`
	ExportAvailable bool `json:"export_available"`
}

type ImportReport struct {
	Message          string   `json:"message"`
	ImportedItems    int      `json:"imported_items"`
	ImportedProjects int      `json:"imported_projects"`
	SkippedProjects  int      `json:"skipped_projects"`
	Errors           []string `json:"errors"`
	TotalErrors      int      `json:"total_errors"`
}

type WipeReport struct {
	Message         string    `json:"message"`
	DeletedItems    int64     `json:"deleted_items"`
	DeletedProjects int64     `json:"deleted_projects"`
	Timestamp       time.Time `json:"timestamp"`
}

func ExportItem(item ContextItem) ExportedItem {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := item.ExtraMetadata
	if meta == nil {
		meta = map[string]any{}
	}
	return ExportedItem{
		ID:            item.ID,
		Title:         item.Title,
		Content:       item.Content,
		ContentType:   item.ContentType,
		Tags:          tags,
		ExtraMetadata: meta,
		Source:        item.Source,
		ProjectID:     item.ProjectID,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func ExportProject(project ContextProject) ExportedProject {
	settings := project.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return ExportedProject{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Settings:    settings,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// UploadRequest describes a file turned into context items.
type UploadRequest struct {
	Filename  string
	MimeType  string
	ProjectID string
	Tags      []string
}

// StoredFile is an uploaded file persisted in object storage.
type StoredFile struct {
	Filename   string
	MimeType   string
	StorageKey string
}
