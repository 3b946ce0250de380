// Package migrations embeds the goose SQL migrations so the binary can
// bring a database up to date without shipping the directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
