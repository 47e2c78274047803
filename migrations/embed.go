// Package migrations embeds the PostgreSQL schema for the search-count store.
package migrations

import "embed"

// FS holds the versioned up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
