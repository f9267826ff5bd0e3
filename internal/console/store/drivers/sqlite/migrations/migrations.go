// Package migrations embeds the sqlite schema migration files so the binary
// can apply them without any on-disk assets.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
