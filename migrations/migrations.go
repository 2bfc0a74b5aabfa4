// Package migrations embeds the SQL schema files applied by "hms-server migrate".
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
