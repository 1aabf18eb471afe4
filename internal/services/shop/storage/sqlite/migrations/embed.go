package migrations

import "embed"

// FS contains embedded SQLite migrations for shop storage.
//
//go:embed *.sql
var FS embed.FS
