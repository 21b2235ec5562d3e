// Package migrations embeds the PostgreSQL schema migrations so the migration
// binary does not depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
