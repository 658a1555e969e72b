package blob

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

// Status describes how a parsed block relates to the file at its path.
type Status string

const (
	StatusIdentical  Status = "identical"
	StatusModified   Status = "modified"
	StatusMissing    Status = "missing"
	StatusUnreadable Status = "unreadable"
)

// Comparison is the workspace status of one block.
type Comparison struct {
	Block        ParsedCodeBlock
	AbsolutePath string
	Status       Status
	Err          error // Set for StatusUnreadable.
}

// ContentHash hashes content after newline normalization and trimming, so that line-ending
// and surrounding whitespace differences do not count as modifications.
func ContentHash(content string) uint64 {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return xxh3.HashString(strings.TrimSpace(content))
}

// Compare reports, for every block, whether the file under root has the same content.
// Paths that escape root are reported missing.
func Compare(fsys afero.Fs, root string, blocks []ParsedCodeBlock) []Comparison {
	out := make([]Comparison, 0, len(blocks))
	for _, block := range blocks {
		c := Comparison{Block: block}

		abs, ok := resolve(root, block.Path)
		if !ok {
			c.Status = StatusMissing
			out = append(out, c)
			continue
		}
		c.AbsolutePath = abs

		data, err := afero.ReadFile(fsys, abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			c.Status = StatusMissing
		case err != nil:
			c.Status = StatusUnreadable
			c.Err = err
		case ContentHash(string(data)) == ContentHash(block.Code):
			c.Status = StatusIdentical
		default:
			c.Status = StatusModified
		}
		out = append(out, c)
	}
	return out
}

// Summarize counts comparisons per status.
func Summarize(comparisons []Comparison) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, c := range comparisons {
		counts[c.Status]++
	}
	return counts
}

func resolve(root, relPath string) (string, bool) {
	if relPath == "" || filepath.IsAbs(filepath.FromSlash(relPath)) {
		return "", false
	}
	abs := filepath.Join(root, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}
