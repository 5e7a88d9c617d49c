// Package migrations embeds the goose migrations for the local SQLite file
// that backs the durable storage scope.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
