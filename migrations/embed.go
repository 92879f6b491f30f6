// Package migrations embeds the SQL schema files so a single binary
// can bootstrap its own database.
package migrations

import (
	"embed"
	"io/fs"
)

// Files holds every .sql migration in lexical order.
//
//go:embed *.sql
var Files embed.FS

// GetFS exposes the embedded migrations as a plain fs.FS
func GetFS() fs.FS {
	return Files
}
