// Package migrations embeds the remote store schema.
package migrations

import "embed"

// FS holds the goose migrations for the remote PostgreSQL store.
//
//go:embed *.sql
var FS embed.FS
