// Package db carries the goose migrations so the binary can migrate without
// the source tree next to it.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
