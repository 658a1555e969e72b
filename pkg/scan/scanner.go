// File: pkg/scan/scanner.go
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"codeclip/pkg/vcs"
)

// Scanner walks a directory tree and applies Rules to every entry.
type Scanner struct {
	fs      afero.Fs
	rules   Rules
	tracker *vcs.Tracker
	logger  *zap.Logger
}

// NewScanner creates a Scanner. tracker may be nil, in which case tracking is never applied.
func NewScanner(fs afero.Fs, rules Rules, tracker *vcs.Tracker, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{fs: fs, rules: rules, tracker: tracker, logger: logger}
}

// Scan walks root depth-first with an explicit stack. Blacklisted directories are not
// descended. A directory that cannot be listed becomes a warning; only an inaccessible or
// non-directory root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	s.logger.Debug("Starting scan", zap.String("root", root))
	tracked := s.trackedFiles(ctx, root)
	result := &Result{Root: root}

	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			s.logger.Warn("Failed to read directory", zap.String("directory", dir), zap.Error(err))
			result.Warnings = multierr.Append(result.Warnings, fmt.Errorf("failed to read directory %s: %w", dir, err))
			continue
		}

		for _, entry := range entries {
			absPath := filepath.Join(dir, entry.Name())
			relPath := relativePath(root, absPath)

			if !entry.IsDir() && !entry.Mode().IsRegular() {
				s.logger.Debug("Skipping non-regular file", zap.String("relPath", relPath))
				result.Skipped++
				continue
			}

			decision := s.rules.Decide(relPath, entry.Name(), entry.IsDir(), entry.Size(), tracked)
			switch decision {
			case Descend:
				stack = append(stack, absPath)
			case Include:
				result.Files = append(result.Files, FileRecord{
					RelativePath: relPath,
					AbsolutePath: absPath,
					Size:         entry.Size(),
				})
			default:
				s.logger.Debug("Skipping entry",
					zap.String("relPath", relPath),
					zap.Stringer("reason", decision))
				result.Skipped++
			}
		}
	}

	sortRecords(result.Files)
	s.logger.Debug("Completed scan",
		zap.String("root", root),
		zap.Int("files", len(result.Files)),
		zap.Int("skipped", result.Skipped),
		zap.Int("warnings", result.WarningCount()))
	return result, nil
}

// ScanFiles applies the rules to an explicit list of files, absolute or relative to root.
// Missing paths and directories become warnings.
func (s *Scanner) ScanFiles(ctx context.Context, root string, candidates []string) (*Result, error) {
	tracked := s.trackedFiles(ctx, root)
	result := &Result{Root: root}
	seen := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		absPath := candidate
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(root, candidate)
		}
		absPath = filepath.Clean(absPath)
		relPath := relativePath(root, absPath)
		if _, dup := seen[relPath]; dup {
			continue
		}
		seen[relPath] = struct{}{}

		info, err := s.fs.Stat(absPath)
		if err != nil {
			s.logger.Warn("Cannot access file", zap.String("filePath", absPath), zap.Error(err))
			result.Warnings = multierr.Append(result.Warnings, fmt.Errorf("failed to access %s: %w", candidate, err))
			continue
		}
		if info.IsDir() {
			result.Warnings = multierr.Append(result.Warnings, fmt.Errorf("%s is a directory", candidate))
			continue
		}

		decision := s.rules.Decide(relPath, filepath.Base(absPath), false, info.Size(), tracked)
		if decision != Include {
			s.logger.Debug("Skipping file", zap.String("relPath", relPath), zap.Stringer("reason", decision))
			result.Skipped++
			continue
		}
		result.Files = append(result.Files, FileRecord{
			RelativePath: relPath,
			AbsolutePath: absPath,
			Size:         info.Size(),
		})
	}

	sortRecords(result.Files)
	return result, nil
}

// trackedFiles returns nil unless tracking is requested and available for root.
func (s *Scanner) trackedFiles(ctx context.Context, root string) vcs.TrackedSet {
	if !s.rules.UseVersionControl || s.tracker == nil {
		return nil
	}
	return s.tracker.Lookup(ctx, root)
}

// relativePath returns path relative to root with forward slashes. Paths outside root keep
// their full slash-separated form.
func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
