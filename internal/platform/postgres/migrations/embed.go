// Package migrations embeds the goose SQL migrations of the tracker schema.
package migrations

import "embed"

// FS holds every migration file.
//
//go:embed *.sql
var FS embed.FS

// Dir is the goose directory inside FS.
const Dir = "."
