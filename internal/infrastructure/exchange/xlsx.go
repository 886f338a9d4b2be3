package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/context-store/internal/core/domain"
)

const (
	itemsSheet    = "items"
	projectsSheet = "projects"
)

var (
	itemColumns    = []any{"id", "title", "content", "content_type", "tags", "extra_metadata", "source", "project_id", "created_at", "updated_at"}
	projectColumns = []any{"id", "name", "description", "settings", "created_at", "updated_at"}
)

func encodeXLSX(w io.Writer, bundle *domain.ExportBundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return fmt.Errorf("rename items sheet: %w", err)
	}
	if _, err := f.NewSheet(projectsSheet); err != nil {
		return fmt.Errorf("create projects sheet: %w", err)
	}

	if err := writeRow(f, itemsSheet, 1, itemColumns); err != nil {
		return err
	}
	for i, item := range bundle.ContextItems {
		row := []any{
			item.ID,
			item.Title,
			item.Content,
			item.ContentType,
			strings.Join(item.Tags, ","),
			jsonCell(item.ExtraMetadata),
			item.Source,
			item.ProjectID,
			formatTime(&item.CreatedAt),
			formatTime(item.UpdatedAt),
		}
		if err := writeRow(f, itemsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, projectsSheet, 1, projectColumns); err != nil {
		return err
	}
	for i, project := range bundle.Projects {
		row := []any{
			project.ID,
			project.Name,
			project.Description,
			jsonCell(project.Settings),
			formatTime(&project.CreatedAt),
			formatTime(project.UpdatedAt),
		}
		if err := writeRow(f, projectsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx export: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func jsonCell(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
