// Package migrations embeds the goose SQL migrations for the PostgreSQL
// backend (users plus the flat records table).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
