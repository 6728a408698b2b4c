// Package migrations embeds the SQL migrations for the lookup tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
