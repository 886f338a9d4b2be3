package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, title, content, content_type, tags, extra_metadata, source, project_id, is_active, created_at, updated_at`

func (r *ItemRepository) Create(ctx context.Context, item *domain.ContextItem) error {
	tagsJSON, meta, err := encodeItemFields(item)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
INSERT INTO context_items (
	title, content, content_type, tags, extra_metadata, source, project_id, is_active, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id
`,
		item.Title, item.Content, item.ContentType, tagsJSON, meta,
		nullString(item.Source), nullString(item.ProjectID), item.IsActive, item.CreatedAt, nullTime(item.UpdatedAt),
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.ContextItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM context_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrItemNotFound, "get item", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return item, nil
}

// GetByIDs returns the rows that exist, in id order. Missing ids are skipped.
func (r *ItemRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.ContextItem, error) {
	if len(ids) == 0 {
		return []domain.ContextItem{}, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `SELECT ` + itemColumns + ` FROM context_items WHERE id IN (` + placeholders(1, len(ids)) + `) ORDER BY id`
	return r.queryItems(ctx, query, args...)
}

// Update rewrites an active row in place.
func (r *ItemRepository) Update(ctx context.Context, item *domain.ContextItem) error {
	tagsJSON, meta, err := encodeItemFields(item)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE context_items
SET title = $2, content = $3, content_type = $4, tags = $5, extra_metadata = $6, source = $7, project_id = $8, updated_at = $9
WHERE id = $1 AND is_active
`,
		item.ID, item.Title, item.Content, item.ContentType, tagsJSON, meta,
		nullString(item.Source), nullString(item.ProjectID), nullTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireAffected(res, domain.ErrItemNotFound, "update item", item.ID)
}

func (r *ItemRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE context_items SET is_active = $2, updated_at = NOW() WHERE id = $1
`, id, active)
	if err != nil {
		return fmt.Errorf("set item active: %w", err)
	}
	return requireAffected(res, domain.ErrItemNotFound, "set item active", id)
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM context_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireAffected(res, domain.ErrItemNotFound, "delete item", id)
}

// List returns active items in id order. Tags match when any is present.
func (r *ItemRepository) List(ctx context.Context, filter domain.ItemListFilter) ([]domain.ContextItem, error) {
	conds := []string{"is_active"}
	args := []any{}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		conds = append(conds, fmt.Sprintf("content_type = $%d", len(args)))
	}
	if len(filter.Tags) > 0 {
		tagConds := make([]string, 0, len(filter.Tags))
		for _, tag := range filter.Tags {
			args = append(args, tag)
			tagConds = append(tagConds, fmt.Sprintf("tags ? $%d", len(args)))
		}
		conds = append(conds, "("+strings.Join(tagConds, " OR ")+")")
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM context_items WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		itemColumns, strings.Join(conds, " AND "), len(args)-1, len(args))
	return r.queryItems(ctx, query, args...)
}

// ScanAll returns every row, active or not, in id order.
func (r *ItemRepository) ScanAll(ctx context.Context) ([]domain.ContextItem, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM context_items ORDER BY id`)
}

func (r *ItemRepository) Stats(ctx context.Context, projectID string) (domain.ItemCounts, error) {
	where := ""
	args := []any{}
	if projectID != "" {
		where = " WHERE project_id = $1"
		args = append(args, projectID)
	}

	counts := domain.ItemCounts{ContentTypes: map[string]int{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM context_items`+where, args...,
	).Scan(&counts.Total, &counts.Active)
	if err != nil {
		return domain.ItemCounts{}, fmt.Errorf("count items: %w", err)
	}

	activeWhere := " WHERE is_active"
	if projectID != "" {
		activeWhere += " AND project_id = $1"
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT content_type, COUNT(*) FROM context_items`+activeWhere+` GROUP BY content_type`, args...)
	if err != nil {
		return domain.ItemCounts{}, fmt.Errorf("count content types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			contentType string
			n           int
		)
		if err := rows.Scan(&contentType, &n); err != nil {
			return domain.ItemCounts{}, fmt.Errorf("scan content type count: %w", err)
		}
		counts.ContentTypes[contentType] = n
	}
	if err := rows.Err(); err != nil {
		return domain.ItemCounts{}, fmt.Errorf("iterate content type counts: %w", err)
	}
	return counts, nil
}

func (r *ItemRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM context_items`)
	if err != nil {
		return 0, fmt.Errorf("delete all items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.ContextItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := []domain.ContextItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.ContextItem, error) {
	var (
		item      domain.ContextItem
		tagsRaw   []byte
		metaRaw   string
		source    sql.NullString
		projectID sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&item.ID, &item.Title, &item.Content, &item.ContentType, &tagsRaw, &metaRaw,
		&source, &projectID, &item.IsActive, &item.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Tags = []string{}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &item.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	item.ExtraMetadata = domain.DecodeMetadata(metaRaw)
	item.Source = source.String
	item.ProjectID = projectID.String
	item.UpdatedAt = timePtr(updatedAt)
	return &item, nil
}

func encodeItemFields(item *domain.ContextItem) ([]byte, string, error) {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, "", fmt.Errorf("marshal tags: %w", err)
	}
	meta, err := domain.EncodeMetadata(item.ExtraMetadata)
	if err != nil {
		return nil, "", fmt.Errorf("marshal extra metadata: %w", err)
	}
	return tagsJSON, meta, nil
}

func requireAffected(res sql.Result, kind error, op string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.WrapError(kind, op, fmt.Errorf("id=%v", id))
	}
	return nil
}
