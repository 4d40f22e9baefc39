// assets/embed.go
//
// Embedded data shipped with the server binary:
//   - dict_words.txt: raw dictionary, filtered into the WordList at startup.
//   - catalog.yaml:   default level catalog.
//   - sql/*.sql:      schema migrations applied by the store package.

package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed dict_words.txt catalog.yaml sql/*.sql
var FS embed.FS

// readLines returns the non-empty, non-comment lines of an embedded file.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Dictionary returns the embedded raw dictionary, one entry per line.
func Dictionary() ([]string, error) {
	return readLines("dict_words.txt")
}

// Catalog returns the embedded YAML level catalog.
func Catalog() ([]byte, error) {
	return FS.ReadFile("catalog.yaml")
}

// Migrations exposes the embedded sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// "sql" is embedded above; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
