// Package migrations embeds the SQL migrations of the key-value table so the binary
// can migrate a database without the source tree.
package migrations

import "embed"

// FS holds one directory per database driver: postgresql and mysql.
//
//go:embed postgresql/*.sql mysql/*.sql
var FS embed.FS
