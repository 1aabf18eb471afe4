// Package sqlite provides the SQLite-backed shop managers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists shop state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite shop store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// siteScope returns the site id of the context locale.
func siteScope(ctx context.Context) (string, error) {
	item, ok := locale.FromContext(ctx)
	if !ok || item.SiteID == "" {
		return "", apperrors.DomainError(apperrors.CodeLocaleMissing, "Locale is not available")
	}
	return item.SiteID, nil
}

// pageQuery is one search translated for a table.
type pageQuery struct {
	where  string
	params []any
	order  string
	limit  int
	offset int
}

func buildPageQuery(siteID string, search *criteria.Search, columns map[string]string, defaultOrder string) (pageQuery, error) {
	if search == nil {
		search = criteria.New()
	}
	cond, err := criteria.ToSQL(search.Conditions(), columns)
	if err != nil {
		return pageQuery{}, apperrors.Wrap(apperrors.KindDomain, apperrors.CodeInvalidSearch, "Invalid search criteria", err)
	}
	order, err := criteria.OrderBy(search.Sortations(), columns)
	if err != nil {
		return pageQuery{}, apperrors.Wrap(apperrors.KindDomain, apperrors.CodeInvalidSearch, "Invalid search criteria", err)
	}
	if order == "" {
		order = defaultOrder
	}
	start, size := search.Slice()
	return pageQuery{
		where:  "site_id = ? AND " + cond.Clause,
		params: append([]any{siteID}, cond.Params...),
		order:  order,
		limit:  size,
		offset: start,
	}, nil
}

func (q pageQuery) selectSQL(columns, table string) (string, []any) {
	query := "SELECT " + columns + " FROM " + table + " WHERE " + q.where + " ORDER BY " + q.order + " LIMIT ? OFFSET ?"
	return query, append(append([]any(nil), q.params...), q.limit, q.offset)
}

func (q pageQuery) countSQL(table string) (string, []any) {
	return "SELECT COUNT(*) FROM " + table + " WHERE " + q.where, q.params
}

func (s *Store) count(ctx context.Context, q pageQuery, table string) (int, error) {
	query, params := q.countSQL(table)
	var total int
	if err := s.sqlDB.QueryRowContext(ctx, query, params...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

func notFound(id string) error {
	return apperrors.DomainError(apperrors.CodeNotFound, "Item with ID \"%s\" not found", id)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func storageError(action string, err error) error {
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.KindDomain, apperrors.CodeAlreadyExists, "Unable to store item", err)
	}
	return apperrors.Wrap(apperrors.KindDomain, apperrors.CodeStorage, "Unable to store item", fmt.Errorf("%s: %w", action, err))
}
