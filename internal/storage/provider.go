// Package storage persists record tables as delimited text files.
package storage

// Provider is the interface for table persistence.
//
// Tables are whole-file entities: reads return every row, writes replace the
// file. Values are plain text; typing is the caller's concern.
type Provider interface {
	// ReadAll returns every row of the named table in file order, each row
	// keyed by the header columns. A missing table returns an error wrapping
	// fs.ErrNotExist so callers can apply an empty-on-missing policy.
	ReadAll(name string) ([]map[string]string, error)
	// WriteAll atomically replaces the named table with header + rows.
	// An empty rows slice still produces a header-only file.
	WriteAll(name string, header []string, rows []map[string]string) error
	// Path returns the absolute path of the named table file.
	Path(name string) string
}
