package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/context-store/internal/core/domain"
)

func newItemRepoWithMock(t *testing.T) (*ItemRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ItemRepository{db: db}, mock, func() { _ = db.Close() }
}

func newProjectRepoWithMock(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ProjectRepository{db: db}, mock, func() { _ = db.Close() }
}

var itemColumnNames = []string{"id", "title", "content", "content_type", "tags", "extra_metadata", "source", "project_id", "is_active", "created_at", "updated_at"}

func TestItemCreateReturnsStoreID(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO context_items").
		WithArgs("t", "c", "text", []byte(`["go"]`), "{}", sqlmock.AnyArg(), sqlmock.AnyArg(), true, created, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	item := &domain.ContextItem{Title: "t", Content: "c", ContentType: "text", Tags: []string{"go"}, IsActive: true, CreatedAt: created}
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID != 17 {
		t.Fatalf("expected id 17, got %d", item.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestItemGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, content").
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)
	if !domain.IsKind(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestItemGetByIDDecodesMalformedMetadataAsEmpty(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, title, content").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow(int64(1), "t", "c", "code", `["a","b"]`, "{not json", "cli", nil, true, created, nil))

	item, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(item.ExtraMetadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", item.ExtraMetadata)
	}
	if len(item.Tags) != 2 || item.Source != "cli" || item.ProjectID != "" || item.UpdatedAt != nil {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestItemGetByIDsUsesPlaceholders(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	created := time.Now().UTC()
	mock.ExpectQuery(`WHERE id IN \(\$1,\$2,\$3\)`).
		WithArgs(int64(3), int64(1), int64(9)).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow(int64(1), "a", "a", "text", `[]`, "{}", nil, nil, true, created, nil).
			AddRow(int64(3), "b", "b", "text", `[]`, "{}", nil, nil, true, created, nil))

	items, err := repo.GetByIDs(context.Background(), []int64{3, 1, 9})
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestItemUpdateReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE context_items").
		WithArgs(int64(4), "t", "c", "text", []byte(`[]`), "{}", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.ContextItem{ID: 4, Title: "t", Content: "c", ContentType: "text"})
	if !domain.IsKind(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestItemListBuildsFilters(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`WHERE is_active AND project_id = \$1 AND content_type = \$2 AND \(tags \? \$3 OR tags \? \$4\) ORDER BY id LIMIT \$5 OFFSET \$6`).
		WithArgs("p1", "code", "go", "rust", 10, 20).
		WillReturnRows(sqlmock.NewRows(itemColumnNames))

	items, err := repo.List(context.Background(), domain.ItemListFilter{
		ProjectID:   "p1",
		ContentType: "code",
		Tags:        []string{"go", "rust"},
		Limit:       10,
		Offset:      20,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestItemStatsCountsByProject(t *testing.T) {
	repo, mock, done := newItemRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER \(WHERE is_active\) FROM context_items WHERE project_id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "active"}).AddRow(5, 3))
	mock.ExpectQuery(`SELECT content_type, COUNT\(\*\) FROM context_items WHERE is_active AND project_id = \$1 GROUP BY content_type`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"content_type", "count"}).AddRow("text", 2).AddRow("code", 1))

	counts, err := repo.Stats(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if counts.Total != 5 || counts.Active != 3 || counts.ContentTypes["code"] != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}

func TestProjectCreateMapsUniqueViolationToConflict(t *testing.T) {
	repo, mock, done := newProjectRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO context_projects").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.ContextProject{ID: "p1", Name: "n", IsActive: true})
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestProjectGetByNameNotFound(t *testing.T) {
	repo, mock, done := newProjectRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM context_projects").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectSetActiveNotFound(t *testing.T) {
	repo, mock, done := newProjectRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE context_projects SET is_active").
		WithArgs("p9", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetActive(context.Background(), "p9", false); !domain.IsKind(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectListScansSettings(t *testing.T) {
	repo, mock, done := newProjectRepoWithMock(t)
	defer done()

	created := time.Now().UTC()
	mock.ExpectQuery("FROM context_projects").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "settings", "is_active", "created_at", "updated_at"}).
			AddRow("p1", "one", nil, `{"color":"red"}`, true, created, nil))

	projects, err := repo.List(context.Background(), domain.Page{Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(projects) != 1 || projects[0].Settings["color"] != "red" {
		t.Fatalf("unexpected projects %+v", projects)
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WithArgs(schemaLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS context_projects`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
