package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/context-store/internal/core/domain"
)

// SearchErrorPolicy decides what a provider failure does to a search.
type SearchErrorPolicy string

const (
	// SearchErrorsDegrade logs the failure and answers with an empty result.
	SearchErrorsDegrade SearchErrorPolicy = "degrade"
	// SearchErrorsStrict returns the failure to the caller.
	SearchErrorsStrict SearchErrorPolicy = "strict"
)

func ParseSearchErrorPolicy(raw string) SearchErrorPolicy {
	if SearchErrorPolicy(strings.ToLower(strings.TrimSpace(raw))) == SearchErrorsStrict {
		return SearchErrorsStrict
	}
	return SearchErrorsDegrade
}

// SearchStage returns items for a query, already filtered and truncated to limit.
type SearchStage interface {
	Search(ctx context.Context, query string, limit int, filter StageFilter) ([]domain.ContextItem, error)
}

type SearchUseCase struct {
	semantic SearchStage
	keyword  SearchStage
	policy   SearchErrorPolicy
	logger   *slog.Logger
	now      func() time.Time
}

func NewSearchUseCase(semantic, keyword SearchStage, policy SearchErrorPolicy, logger *slog.Logger) *SearchUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if policy != SearchErrorsStrict {
		policy = SearchErrorsDegrade
	}
	return &SearchUseCase{
		semantic: semantic,
		keyword:  keyword,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	start := uc.now()

	q, err := query.Normalize()
	if err != nil {
		return nil, err
	}

	ranked, postContentTypes, err := uc.rank(ctx, q)
	if err != nil {
		return uc.failed(q, start, err)
	}

	page, total := filterAndPage(ranked, postContentTypes, q.Filters.Tags, q.Offset, q.Limit)
	return &domain.SearchResult{
		Items:           page,
		Total:           total,
		Limit:           q.Limit,
		Offset:          q.Offset,
		SearchType:      q.SearchType,
		Query:           q.Query,
		ExecutionTimeMs: uc.elapsedMs(start),
	}, nil
}

// hybridFetchSize is the per-stage list length fed to fusion. Rank scores
// depend on list length, so it must not vary with the requested page.
const hybridFetchSize = 2 * domain.MaxSearchLimit

// rank runs the stages for q and returns the ranked list together with the
// content types still to be applied after ranking.
func (uc *SearchUseCase) rank(ctx context.Context, q domain.SearchQuery) ([]domain.ScoredItem, []string, error) {
	window := q.Offset + q.Limit

	switch q.SearchType {
	case domain.SearchSemantic:
		items, err := uc.semantic.Search(ctx, q.Query, window, stageFilterFor(q, true))
		if err != nil {
			return nil, nil, fmt.Errorf("semantic stage: %w", err)
		}
		return unscored(items), nil, nil
	case domain.SearchKeyword:
		items, err := uc.keyword.Search(ctx, q.Query, window, stageFilterFor(q, true))
		if err != nil {
			return nil, nil, fmt.Errorf("keyword stage: %w", err)
		}
		return unscored(items), nil, nil
	default:
		semantic, keyword, err := uc.runHybridStages(ctx, q, hybridFetchSize)
		if err != nil {
			return nil, nil, err
		}
		return fuseRankings(semantic, keyword, q.Weight()), q.Filters.ContentTypes, nil
	}
}

func (uc *SearchUseCase) runHybridStages(ctx context.Context, q domain.SearchQuery, fetch int) ([]domain.ContextItem, []domain.ContextItem, error) {
	filter := stageFilterFor(q, false)

	var semantic, keyword []domain.ContextItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := uc.semantic.Search(gctx, q.Query, fetch, filter)
		if err != nil {
			return fmt.Errorf("semantic stage: %w", err)
		}
		semantic = items
		return nil
	})
	g.Go(func() error {
		items, err := uc.keyword.Search(gctx, q.Query, fetch, filter)
		if err != nil {
			return fmt.Errorf("keyword stage: %w", err)
		}
		keyword = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return semantic, keyword, nil
}

func (uc *SearchUseCase) failed(q domain.SearchQuery, start time.Time, cause error) (*domain.SearchResult, error) {
	elapsed := uc.elapsedMs(start)
	if uc.policy == SearchErrorsStrict {
		return nil, fmt.Errorf("%s search: %w", q.SearchType, cause)
	}

	uc.logger.Error("search_degraded",
		"search_type", string(q.SearchType),
		"query_len", len(q.Query),
		"execution_time_ms", elapsed,
		"error", cause,
	)
	return &domain.SearchResult{
		Items:           []domain.ScoredItem{},
		Total:           0,
		Limit:           q.Limit,
		Offset:          q.Offset,
		SearchType:      q.SearchType,
		Query:           q.Query,
		ExecutionTimeMs: elapsed,
		Degraded:        true,
	}, nil
}

func (uc *SearchUseCase) elapsedMs(start time.Time) float64 {
	return float64(uc.now().Sub(start).Microseconds()) / 1000.0
}

// stageFilterFor builds the in-stage filter. Content types are applied in
// the stage for single-stage searches and after fusion for hybrid ones.
func stageFilterFor(q domain.SearchQuery, withContentTypes bool) StageFilter {
	filter := StageFilter{
		ActiveOnly: true,
		ProjectID:  q.Filters.ProjectID,
	}
	if withContentTypes {
		filter.ContentTypes = q.Filters.ContentTypes
	}
	return filter
}
