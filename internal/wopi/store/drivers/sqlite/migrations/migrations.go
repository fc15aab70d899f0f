package migrations

import "embed"

// Migrations holds the artifact catalogue schema, applied by golang-migrate.
//
//go:embed *.sql
var Migrations embed.FS
