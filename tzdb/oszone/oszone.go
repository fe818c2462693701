// Package oszone reads compiled zone files from the operating system's
// zoneinfo database, searching the usual installation directories and the
// Go distribution's zoneinfo.zip as a fallback.
package oszone

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DB locates raw TZif data by zone name.
type DB struct {
	// Dirs lists the locations searched, in order. Entries ending in
	// ".zip" are read as zip archives. If empty, the usual system
	// locations are searched: $TZDIR first, then the common zoneinfo
	// directories, then the Go distribution's zoneinfo.zip.
	Dirs []string
}

// Default is the database used when none is configured explicitly.
var Default = &DB{}

// Map is an in-memory source keyed by zone name, mainly for tests.
type Map map[string][]byte

// Zone returns the raw TZif data of the named zone.
func (m Map) Zone(name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("zone %s: %w", name, fs.ErrNotExist)
	}
	return b, nil
}

// Zone returns the raw TZif data of the named zone. Unknown and invalid
// names are reported with an error satisfying errors.Is(err,
// fs.ErrNotExist).
func (db *DB) Zone(name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("invalid zone name %q: %w", name, fs.ErrNotExist)
	}
	for _, dir := range db.dirs() {
		var (
			b   []byte
			err error
		)
		if strings.HasSuffix(dir, ".zip") {
			b, err = readZip(dir, name)
		} else {
			b, err = os.ReadFile(filepath.Join(dir, name))
		}
		if err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("zone %s not found in zoneinfo database: %w", name, fs.ErrNotExist)
}

func (db *DB) dirs() []string {
	if db != nil && len(db.Dirs) > 0 {
		return db.Dirs
	}
	var out []string
	if tzdir := os.Getenv("TZDIR"); tzdir != "" {
		out = append(out, tzdir)
	}
	out = append(out,
		"/usr/share/zoneinfo",
		"/usr/share/lib/zoneinfo",
		"/etc/zoneinfo",
	)
	if goroot := runtime.GOROOT(); goroot != "" {
		out = append(out, filepath.Join(goroot, "lib", "time", "zoneinfo.zip"))
	}
	return out
}

// validName rejects names that would escape the database directory. Zone
// names are slash-separated relative paths such as "America/New_York".
func validName(name string) bool {
	if name == "" || strings.ContainsAny(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

func readZip(path, name string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fs.ErrNotExist
}
