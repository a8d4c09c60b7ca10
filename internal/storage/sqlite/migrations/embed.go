package migrations

import "embed"

// FS contains embedded SQLite migrations for roomvoice storage.
//
//go:embed *.sql
var FS embed.FS
