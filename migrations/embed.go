// Package migrations embeds the goose migrations that bring a Kindle
// vocabulary image up to the schema lexicon expects.
package migrations

import "embed"

// FS holds the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
