// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the SQL migration files applied by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
