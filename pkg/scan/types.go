// File: pkg/scan/types.go
package scan

import (
	"errors"
	"sort"

	"go.uber.org/multierr"
)

var (
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("scan root is not a directory")

	// ErrBinaryContent marks a file skipped because it looks binary.
	ErrBinaryContent = errors.New("binary content")

	// ErrInvalidEncoding marks a file skipped because it is not valid UTF-8.
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
)

// FileRecord is one entry produced by a scan.
type FileRecord struct {
	RelativePath string // Root-relative, slash-separated; unique within one result.
	AbsolutePath string // Platform path, only used for I/O.
	IsDirectory  bool
	Content      string // Empty until the record has been read.
	Size         int64  // Size reported by the directory listing.
}

// Result holds the outcome of a scan.
type Result struct {
	Root     string
	Files    []FileRecord // Sorted by RelativePath.
	Skipped  int          // Entries rejected by the rules.
	Warnings error        // Aggregated non-fatal errors.
}

// WarningCount returns the number of aggregated warnings.
func (r *Result) WarningCount() int {
	return len(multierr.Errors(r.Warnings))
}

// ReadResult holds the outcome of reading file contents.
type ReadResult struct {
	Files    []FileRecord // Successfully read, sorted by RelativePath.
	Skipped  []string     // Relative paths that could not be included.
	Warnings error
}

// WarningCount returns the number of aggregated warnings.
func (r *ReadResult) WarningCount() int {
	return len(multierr.Errors(r.Warnings))
}

func sortRecords(records []FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].RelativePath < records[j].RelativePath
	})
}
