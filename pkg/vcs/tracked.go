// Package vcs answers "is this path tracked by git" for the scanner.
// Failures never propagate as hard errors to callers that only want filtering; they mean
// "tracking filter disabled for this scan".
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every git invocation.
const DefaultTimeout = 10 * time.Second

// Always-excluded directory names while tracking is active.
const (
	MetadataDir   = ".git"
	DependencyDir = "node_modules"
)

// ErrNotRepository is returned when the root is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Runner executes an external command in dir and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// TrackedSet is the set of root-relative, slash-separated tracked paths.
type TrackedSet map[string]struct{}

// Contains reports whether relPath is tracked.
func (s TrackedSet) Contains(relPath string) bool {
	_, ok := s[relPath]
	return ok
}

// Tracker queries git for tracked files.
type Tracker struct {
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(t *Tracker) { t.runner = r }
}

// WithTimeout replaces the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.timeout = d }
}

// NewTracker returns a Tracker that shells out to git.
func NewTracker(logger *zap.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		runner:  ExecRunner{},
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IsRepository checks whether root is inside a git work tree.
func (t *Tracker) IsRepository(ctx context.Context, root string) bool {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.runner.Run(ctx, root, "git", "rev-parse", "--is-inside-work-tree")
	if err != nil {
		t.logger.Debug("Repository check failed", zap.String("root", root), zap.Error(err))
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// TrackedFiles lists files tracked under root, relative to root.
func (t *Tracker) TrackedFiles(ctx context.Context, root string) (TrackedSet, error) {
	if !t.IsRepository(ctx, root) {
		return nil, ErrNotRepository
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	// -z keeps paths unquoted; ls-files run from root already yields root-relative paths.
	out, err := t.runner.Run(ctx, root, "git", "ls-files", "-z", "--cached")
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked files: %w", err)
	}

	set := ParseLsFiles(out)
	t.logger.Debug("Loaded tracked files", zap.String("root", root), zap.Int("count", len(set)))
	return set, nil
}

// Lookup is TrackedFiles with failures folded into "no filtering": it returns nil when the
// root is not a repository, git is unavailable, or nothing is tracked.
func (t *Tracker) Lookup(ctx context.Context, root string) TrackedSet {
	set, err := t.TrackedFiles(ctx, root)
	if err != nil {
		t.logger.Debug("Tracking filter disabled", zap.String("root", root), zap.Error(err))
		return nil
	}
	if len(set) == 0 {
		t.logger.Debug("No tracked files; tracking filter disabled", zap.String("root", root))
		return nil
	}
	return set
}

// ParseLsFiles splits NUL- or newline-separated `git ls-files` output into a set.
func ParseLsFiles(out []byte) TrackedSet {
	sep := "\n"
	if bytes.IndexByte(out, 0) >= 0 {
		sep = "\x00"
	}

	set := make(TrackedSet)
	for _, line := range strings.Split(string(out), sep) {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		set[filepath.ToSlash(line)] = struct{}{}
	}
	return set
}
