// Package migrations embeds the SQL schema files applied at startup and by
// the integration tests.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Up returns the contents of every *.up.sql file in version order.
func Up() ([]string, error) {
	return load(".up.sql", false)
}

// Down returns the contents of every *.down.sql file in reverse version order.
func Down() ([]string, error) {
	return load(".down.sql", true)
}

func load(suffix string, reverse bool) ([]string, error) {
	names, err := fs.Glob(files, "*"+suffix)
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			scripts = append(scripts, s)
		}
	}

	return scripts, nil
}
