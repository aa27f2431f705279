// Package migrations embeds the versioned SQL migrations for the warmscout
// SQLite store.
package migrations

import "embed"

// FS holds every .up.sql migration, embedded at compile time and applied in
// lexical order.
//
//go:embed *.sql
var FS embed.FS
