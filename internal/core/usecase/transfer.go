package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

type TransferUseCase struct {
	items       ports.ItemRepository
	projects    ports.ProjectRepository
	index       ports.VectorIndex
	itemService ports.ItemService
	logger      *slog.Logger
	now         func() time.Time
}

func NewTransferUseCase(
	items ports.ItemRepository,
	projects ports.ProjectRepository,
	index ports.VectorIndex,
	itemService ports.ItemService,
	logger *slog.Logger,
) *TransferUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferUseCase{
		items:       items,
		projects:    projects,
		index:       index,
		itemService: itemService,
		logger:      logger,
		now:         time.Now,
	}
}

// Export returns every active item and project.
func (uc *TransferUseCase) Export(ctx context.Context) (*domain.ExportBundle, error) {
	items, projects, err := uc.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &domain.ExportBundle{
		ExportInfo: domain.ExportInfo{
			ExportDate:    uc.now().UTC(),
			Version:       domain.ExportVersion,
			TotalItems:    len(items),
			TotalProjects: len(projects),
		},
		ContextItems: make([]domain.ExportedItem, 0, len(items)),
		Projects:     make([]domain.ExportedProject, 0, len(projects)),
	}
	for _, item := range items {
		bundle.ContextItems = append(bundle.ContextItems, domain.ExportItem(item))
	}
	for _, project := range projects {
		bundle.Projects = append(bundle.Projects, domain.ExportProject(project))
	}
	return bundle, nil
}

func (uc *TransferUseCase) ExportInfo(ctx context.Context) (*domain.ExportSummary, error) {
	items, projects, err := uc.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ExportSummary{
		TotalItems:      len(items),
		TotalProjects:   len(projects),
		ExportAvailable: len(items) > 0 || len(projects) > 0,
	}, nil
}

func (uc *TransferUseCase) loadAll(ctx context.Context) ([]domain.ContextItem, []domain.ContextProject, error) {
	var (
		items    []domain.ContextItem
		projects []domain.ContextProject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := uc.items.ScanAll(gctx)
		if err != nil {
			return fmt.Errorf("scan items: %w", err)
		}
		items = make([]domain.ContextItem, 0, len(all))
		for _, item := range all {
			if item.IsActive {
				items = append(items, item)
			}
		}
		return nil
	})
	g.Go(func() error {
		all, err := uc.allProjects(gctx)
		if err != nil {
			return err
		}
		projects = all
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, projects, nil
}

func (uc *TransferUseCase) allProjects(ctx context.Context) ([]domain.ContextProject, error) {
	out := []domain.ContextProject{}
	for offset := 0; ; offset += domain.MaxListLimit {
		page, err := uc.projects.List(ctx, domain.Page{Limit: domain.MaxListLimit, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, page...)
		if len(page) < domain.MaxListLimit {
			return out, nil
		}
	}
}

// Import loads projects first, skipping names that already exist, then
// creates every item fresh. Record failures are collected, not returned.
func (uc *TransferUseCase) Import(ctx context.Context, bundle *domain.ExportBundle) (*domain.ImportReport, error) {
	if bundle == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import", fmt.Errorf("empty bundle"))
	}

	report := &domain.ImportReport{Errors: []string{}}
	for i, exported := range bundle.Projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := (domain.ProjectDraft{Name: exported.Name}).Validate(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("project %d: %v", i, err))
			continue
		}
		if _, err := uc.projects.GetByName(ctx, exported.Name); err == nil {
			report.SkippedProjects++
			continue
		} else if !domain.IsKind(err, domain.ErrProjectNotFound) {
			report.Errors = append(report.Errors, fmt.Sprintf("project %d: %v", i, err))
			continue
		}

		settings := exported.Settings
		if settings == nil {
			settings = map[string]any{}
		}
		project := &domain.ContextProject{
			ID:          exported.ID,
			Name:        exported.Name,
			Description: exported.Description,
			Settings:    settings,
			IsActive:    true,
			CreatedAt:   exported.CreatedAt,
			UpdatedAt:   exported.UpdatedAt,
		}
		if project.CreatedAt.IsZero() {
			project.CreatedAt = uc.now().UTC()
		}
		if project.ID == "" {
			project.ID = uuid.NewString()
		}
		if err := uc.projects.Create(ctx, project); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("project %d: %v", i, err))
			continue
		}
		report.ImportedProjects++
	}

	for i, exported := range bundle.ContextItems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, err := uc.itemService.Create(ctx, domain.ItemDraft{
			Title:         exported.Title,
			Content:       exported.Content,
			ContentType:   exported.ContentType,
			Tags:          exported.Tags,
			ExtraMetadata: exported.ExtraMetadata,
			Source:        exported.Source,
			ProjectID:     exported.ProjectID,
		})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		report.ImportedItems++
	}

	report.TotalErrors = len(report.Errors)
	report.Message = fmt.Sprintf("imported %d items and %d projects", report.ImportedItems, report.ImportedProjects)
	uc.logger.Info("import_finished",
		"imported_items", report.ImportedItems,
		"imported_projects", report.ImportedProjects,
		"skipped_projects", report.SkippedProjects,
		"errors", report.TotalErrors,
	)
	return report, nil
}

// Wipe hard-deletes all items, resets the vector index and hard-deletes all projects.
func (uc *TransferUseCase) Wipe(ctx context.Context) (*domain.WipeReport, error) {
	deletedItems, err := uc.items.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete items: %w", err)
	}
	if err := uc.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset vector index: %w", err)
	}
	deletedProjects, err := uc.projects.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete projects: %w", err)
	}

	uc.logger.Warn("store_wiped", "deleted_items", deletedItems, "deleted_projects", deletedProjects)
	return &domain.WipeReport{
		Message:         "all context items and projects deleted",
		DeletedItems:    deletedItems,
		DeletedProjects: deletedProjects,
		Timestamp:       uc.now().UTC(),
	}, nil
}
