package docdb

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// readbackSuffix is the recognized suffix of readback field names. A field
// ending in it falls back to the base field's documentation entry.
const readbackSuffix = "_RBV"

//go:embed tables/*.yaml
var tablesFS embed.FS

// Table maps field names to description strings.
type Table map[string]string

var (
	loadOnce sync.Once
	tables   map[string]Table
	loadErr  error
)

// load parses every embedded table exactly once.
func load() {
	tables = make(map[string]Table)

	entries, err := fs.ReadDir(tablesFS, "tables")
	if err != nil {
		loadErr = fmt.Errorf("reading bundled tables: %w", err)
		return
	}

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		data, err := tablesFS.ReadFile(path.Join("tables", entry.Name()))
		if err != nil {
			loadErr = fmt.Errorf("reading table %q: %w", name, err)
			return
		}

		var t Table
		if err := yaml.Unmarshal(data, &t); err != nil {
			loadErr = fmt.Errorf("parsing table %q: %w", name, err)
			return
		}
		tables[name] = t
	}
}

// TableNames returns the names of every bundled table, sorted.
func TableNames() []string {
	loadOnce.Do(load)

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup searches the named tables in order for documentation on a field.
//
// For each table the exact field name is tried first; a name carrying the
// readback suffix is then retried with the suffix stripped. Unknown table
// names are skipped. On a complete miss the sentinel returned by NotFound
// is used, so lookup failures are never fatal.
func Lookup(sources []string, field string) string {
	loadOnce.Do(load)
	if loadErr != nil {
		return NotFound(field)
	}

	for _, source := range sources {
		t, ok := tables[source]
		if !ok {
			continue
		}

		if doc, ok := t[field]; ok {
			return doc
		}
		if base, ok := strings.CutSuffix(field, readbackSuffix); ok {
			if doc, ok := t[base]; ok {
				return doc
			}
		}
	}
	return NotFound(field)
}

// NotFound returns the sentinel documentation string for a field no table
// describes. It always contains the searched field name.
func NotFound(field string) string {
	return fmt.Sprintf("no documentation found [field=%s]", field)
}
