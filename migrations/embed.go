// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and the sync binary.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
