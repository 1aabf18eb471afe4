package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func TestApplyRecordsAppliedFiles(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"migrations/002_more.sql":   {Data: []byte("-- +migrate Up\nCREATE TABLE more(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE more;")},
		"migrations/001_create.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);")},
		"migrations/readme.txt":     {Data: []byte("ignored")},
	}

	applied, err := Apply(context.Background(), db, migrations, "migrations")
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if diff := cmp.Diff([]string{"001_create.sql", "002_more.sql"}, applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}
	if !tableExists(t, db, "items") || !tableExists(t, db, "more") {
		t.Fatal("expected applied tables to exist")
	}
}

func TestApplySkipsAlreadyApplied(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_create.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);")},
	}
	if _, err := Apply(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply initial migrations: %v", err)
	}
	applied, err := Apply(context.Background(), db, migrations, "")
	if err != nil {
		t.Fatalf("re-apply migrations should be idempotent: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing applied on replay, got %v", applied)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected single migration row after replay, got %d", rows)
	}
}

func TestApplyRejectsBrokenSQL(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_bad.sql": {Data: []byte("-- +migrate Up\nCREATE TABLEX nope;")},
	}
	if _, err := Apply(context.Background(), db, migrations, ""); err == nil {
		t.Fatal("expected exec error")
	}
}

func TestApplyHonoursCancelledContext(t *testing.T) {
	db := openInMemoryDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Apply(ctx, db, fstest.MapFS{"001.sql": {Data: []byte("SELECT 1;")}}, "")
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestUpSection(t *testing.T) {
	tests := map[string]string{
		"-- +migrate Up\nA;\n-- +migrate Down\nB;": "\nA;\n",
		"-- +migrate Up\nA;":                       "\nA;",
		"A;":                                       "A;",
	}
	for input, want := range tests {
		if got := UpSection(input); got != want {
			t.Fatalf("UpSection(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if !IsAlreadyExistsError(errors.New("table items already exists")) {
		t.Fatal("expected already exists match")
	}
	if IsAlreadyExistsError(nil) || IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("expected no match")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return true
}
