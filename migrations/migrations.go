// Package migrations embeds the goose SQL migrations applied at startup.
//
// River's own schema is managed separately with the river CLI
// (river migrate-up), not through these files.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
