// Package migrations embeds the SQL schema applied by cmd/migrate.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var Content embed.FS

// Files returns the migration file names in apply order
func Files() ([]string, error) {
	names, err := fs.Glob(Content, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
