package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir implements Provider with one CSV file per table under a data directory.
type Dir struct {
	root string // absolute path to the data directory
}

// NewDir creates a Dir provider rooted at the given directory.
// The directory must already exist.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// tablePath resolves a table name inside the data directory. Names are flat
// file names; anything resembling a path is rejected.
func (d *Dir) tablePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: invalid table name: %q", name)
	}
	return filepath.Join(d.root, name), nil
}

// Path returns the absolute path of the named table file. Invalid names map
// to an empty string.
func (d *Dir) Path(name string) string {
	p, err := d.tablePath(name)
	if err != nil {
		return ""
	}
	return p
}

// ReadAll reads the whole table. The first row is the header; every
// subsequent row becomes a column-keyed map. Rows shorter than the header
// leave the trailing columns empty.
func (d *Dir) ReadAll(name string) ([]map[string]string, error) {
	abs, err := d.tablePath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows from hand-edited files
	raw, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	header := raw[0]
	rows := make([]map[string]string, 0, len(raw)-1)
	for _, line := range raw[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(line) {
				rec[col] = line[i]
			} else {
				rec[col] = ""
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// WriteAll rewrites the table atomically: tmp file → fsync → rename.
// The header is always written, even for an empty collection.
func (d *Dir) WriteAll(name string, header []string, rows []map[string]string) error {
	abs, err := d.tablePath(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".fleet-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("storage: write header: %w", err)
	}
	line := make([]string, len(header))
	for _, rec := range rows {
		for i, col := range header {
			line[i] = rec[col]
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("storage: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("storage: flush: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
