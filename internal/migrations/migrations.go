package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var files embed.FS

// Schema returns every migration script concatenated in file name order
func Schema() (string, error) {
	names, err := fs.Glob(files, "sql/*.sql")
	if err != nil {
		return "", fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no migration scripts embedded")
	}
	sort.Strings(names)

	var schema string
	for _, name := range names {
		content, err := files.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		schema += string(content) + "\n"
	}
	return schema, nil
}
