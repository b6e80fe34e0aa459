// Package mailguard holds assets shared by the binaries of the module.
package mailguard

import "embed"

// Migrations holds the goose SQL migrations of the service schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS
