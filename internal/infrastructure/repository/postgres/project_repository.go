package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, description, settings, is_active, created_at, updated_at`

func (r *ProjectRepository) Create(ctx context.Context, project *domain.ContextProject) error {
	settings, err := domain.EncodeMetadata(project.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO context_projects (id, name, description, settings, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		project.ID, project.Name, nullString(project.Description), settings,
		project.IsActive, project.CreatedAt, nullTime(project.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "create project", fmt.Errorf("id=%s", project.ID))
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.ContextProject, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM context_projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProjectNotFound, "get project", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return project, nil
}

// GetByName returns the oldest active project with name.
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*domain.ContextProject, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+projectColumns+` FROM context_projects
WHERE name = $1 AND is_active
ORDER BY created_at
LIMIT 1
`, name)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProjectNotFound, "get project by name", fmt.Errorf("name=%s", name))
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return project, nil
}

func (r *ProjectRepository) List(ctx context.Context, page domain.Page) ([]domain.ContextProject, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+projectColumns+` FROM context_projects
WHERE is_active
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	out := []domain.ContextProject{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.ContextProject) error {
	settings, err := domain.EncodeMetadata(project.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE context_projects
SET name = $2, description = $3, settings = $4, updated_at = $5
WHERE id = $1 AND is_active
`, project.ID, project.Name, nullString(project.Description), settings, nullTime(project.UpdatedAt))
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireAffected(res, domain.ErrProjectNotFound, "update project", project.ID)
}

func (r *ProjectRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE context_projects SET is_active = $2, updated_at = NOW() WHERE id = $1
`, id, active)
	if err != nil {
		return fmt.Errorf("set project active: %w", err)
	}
	return requireAffected(res, domain.ErrProjectNotFound, "set project active", id)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM context_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireAffected(res, domain.ErrProjectNotFound, "delete project", id)
}

func (r *ProjectRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM context_projects WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (r *ProjectRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM context_projects`)
	if err != nil {
		return 0, fmt.Errorf("delete all projects: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanProject(row rowScanner) (*domain.ContextProject, error) {
	var (
		project     domain.ContextProject
		description sql.NullString
		settingsRaw string
		updatedAt   sql.NullTime
	)
	err := row.Scan(&project.ID, &project.Name, &description, &settingsRaw, &project.IsActive, &project.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	project.Description = description.String
	project.Settings = domain.DecodeMetadata(settingsRaw)
	project.UpdatedAt = timePtr(updatedAt)
	return &project, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
