package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

type ProjectUseCase struct {
	projects ports.ProjectRepository
	now      func() time.Time
}

func NewProjectUseCase(projects ports.ProjectRepository) *ProjectUseCase {
	return &ProjectUseCase{
		projects: projects,
		now:      time.Now,
	}
}

func (uc *ProjectUseCase) Create(ctx context.Context, draft domain.ProjectDraft) (*domain.ContextProject, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(draft.ID)
	if id == "" {
		id = uuid.NewString()
	}
	settings := draft.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	project := &domain.ContextProject{
		ID:          id,
		Name:        strings.TrimSpace(draft.Name),
		Description: draft.Description,
		Settings:    settings,
		IsActive:    true,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (uc *ProjectUseCase) Get(ctx context.Context, id string) (*domain.ContextProject, error) {
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if !project.IsActive {
		return nil, domain.WrapError(domain.ErrProjectNotFound, "get project", fmt.Errorf("id=%s", id))
	}
	return project, nil
}

func (uc *ProjectUseCase) List(ctx context.Context, page domain.Page) ([]domain.ContextProject, error) {
	normalized, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	projects, err := uc.projects.List(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (uc *ProjectUseCase) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.ContextProject, error) {
	project, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(project); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	project.UpdatedAt = &now
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete deactivates the project, or removes the row when hard is set.
// Items keep their project_id either way.
func (uc *ProjectUseCase) Delete(ctx context.Context, id string, hard bool) error {
	if hard {
		if err := uc.projects.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	}
	if _, err := uc.Get(ctx, id); err != nil {
		return err
	}
	if err := uc.projects.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate project: %w", err)
	}
	return nil
}
