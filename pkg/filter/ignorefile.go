// File: pkg/filter/ignorefile.go
package filter

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// IgnoreFileName is the per-workspace file holding extra blacklist patterns.
const IgnoreFileName = ".codeclipignore"

// ParseIgnoreLines extracts patterns from ignore file content.
// Blank lines and lines starting with '#' are skipped; "\#" escapes a literal leading hash.
func ParseIgnoreLines(content string) []string {
	var patterns []string
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, `\#`) {
			trimmed = trimmed[1:]
		}
		patterns = append(patterns, trimmed)
	}
	return patterns
}

// LoadIgnoreFile reads patterns from the ignore file at path.
// A missing file yields no patterns and no error.
func LoadIgnoreFile(fsys afero.Fs, path string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", path))
			return nil, nil
		}
		logger.Warn("Failed to read ignore file", zap.String("filePath", path), zap.Error(err))
		return nil, err
	}

	patterns := ParseIgnoreLines(string(content))
	logger.Debug("Loaded ignore file", zap.String("filePath", path), zap.Int("patternCount", len(patterns)))
	return patterns, nil
}
