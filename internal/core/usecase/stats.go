package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/core/ports"
)

// BackendInfo names the configured backends reported by DatabaseInfo.
type BackendInfo struct {
	Backend          string
	VectorBackend    string
	VectorCollection string
	EmbeddingModel   string
}

type StatsUseCase struct {
	items    ports.ItemRepository
	projects ports.ProjectRepository
	embedder ports.Embedder
	backend  BackendInfo
	now      func() time.Time
}

func NewStatsUseCase(
	items ports.ItemRepository,
	projects ports.ProjectRepository,
	embedder ports.Embedder,
	backend BackendInfo,
) *StatsUseCase {
	return &StatsUseCase{
		items:    items,
		projects: projects,
		embedder: embedder,
		backend:  backend,
		now:      time.Now,
	}
}

// Stats counts items, optionally within one project. TotalItems includes
// deactivated items.
func (uc *StatsUseCase) Stats(ctx context.Context, projectID string) (*domain.ContextStats, error) {
	var (
		counts   domain.ItemCounts
		projects int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := uc.items.Stats(gctx, projectID)
		if err != nil {
			return fmt.Errorf("item stats: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		n, err := uc.projects.CountActive(gctx)
		if err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		projects = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contentTypes := counts.ContentTypes
	if contentTypes == nil {
		contentTypes = map[string]int{}
	}
	return &domain.ContextStats{
		TotalItems:         counts.Total,
		ActiveItems:        counts.Active,
		ContentTypes:       contentTypes,
		ProjectsCount:      projects,
		EmbeddingDimension: uc.embedder.Dimension(),
		LastUpdated:        uc.now().UTC(),
	}, nil
}

func (uc *StatsUseCase) DatabaseInfo(ctx context.Context) (*domain.DatabaseInfo, error) {
	stats, err := uc.Stats(ctx, "")
	if err != nil {
		return nil, err
	}
	return &domain.DatabaseInfo{
		Backend:            uc.backend.Backend,
		VectorBackend:      uc.backend.VectorBackend,
		VectorCollection:   uc.backend.VectorCollection,
		EmbeddingModel:     uc.backend.EmbeddingModel,
		EmbeddingDimension: stats.EmbeddingDimension,
		ItemsCount:         stats.TotalItems,
		ActiveItemsCount:   stats.ActiveItems,
		ProjectsCount:      stats.ProjectsCount,
	}, nil
}
