// Package migrations embeds the SQL migration files for the mailvault
// database. Files follow the golang-migrate naming convention.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
