// Package migrations carries the SQLite schema for the research cache.
// Files are named NNN_name.up.sql / NNN_name.down.sql and applied in order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
