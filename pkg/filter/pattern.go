// File: pkg/filter/pattern.go
package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Wildcard is the only special character a blacklist pattern understands.
const Wildcard = "*"

// Pattern is a single compiled blacklist entry.
type Pattern struct {
	Raw  string    // Pattern as configured.
	glob glob.Glob // Compiled matcher; nil for literal patterns.
}

// CompilePattern compiles a blacklist entry. Patterns without a wildcard stay literal and are
// matched by name or by directory segments; patterns with a wildcard are anchored globs in which
// every other character is literal and '*' also crosses '/'.
func CompilePattern(raw string) (*Pattern, error) {
	p := &Pattern{Raw: raw}
	if !strings.Contains(raw, Wildcard) {
		return p, nil
	}

	parts := strings.Split(raw, Wildcard)
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}

	// No separators are passed, so '*' is free to span path segments.
	g, err := glob.Compile(strings.Join(parts, Wildcard))
	if err != nil {
		return nil, fmt.Errorf("invalid blacklist pattern %q: %w", raw, err)
	}
	p.glob = g
	return p, nil
}

// Match reports whether the entry at relPath (slash-separated, root-relative) with base name
// filename is excluded by this pattern.
func (p *Pattern) Match(relPath, filename string) bool {
	if p.glob != nil {
		return p.glob.Match(relPath) || p.glob.Match(filename)
	}
	return matchLiteral(relPath, filename, p.Raw)
}

// matchLiteral handles directory-style entries such as "node_modules" or "src/generated".
// Matching happens on segment boundaries so "node_modules" never hits "my_node_modules".
func matchLiteral(relPath, filename, pattern string) bool {
	if pattern == "" {
		return false
	}
	if relPath == pattern || filename == pattern {
		return true
	}
	return strings.HasPrefix(relPath, pattern+"/") ||
		strings.Contains(relPath, "/"+pattern+"/") ||
		strings.HasSuffix(relPath, "/"+pattern)
}

// Matches is the one-shot form of CompilePattern + Match. An invalid pattern never matches.
func Matches(relPath, filename, pattern string) bool {
	p, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	return p.Match(relPath, filename)
}

// Blacklist is an ordered collection of compiled patterns.
type Blacklist struct {
	patterns []*Pattern
}

// NewBlacklist compiles every non-blank pattern. Duplicates are kept once.
func NewBlacklist(patterns ...string) (*Blacklist, error) {
	bl := &Blacklist{}
	if err := bl.Add(patterns...); err != nil {
		return nil, err
	}
	return bl, nil
}

// Add compiles and appends patterns.
func (bl *Blacklist) Add(patterns ...string) error {
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || bl.contains(raw) {
			continue
		}
		p, err := CompilePattern(raw)
		if err != nil {
			return err
		}
		bl.patterns = append(bl.patterns, p)
	}
	return nil
}

func (bl *Blacklist) contains(raw string) bool {
	for _, p := range bl.patterns {
		if p.Raw == raw {
			return true
		}
	}
	return false
}

// Match returns the first pattern excluding the entry, if any.
func (bl *Blacklist) Match(relPath, filename string) (bool, string) {
	if bl == nil {
		return false, ""
	}
	for _, p := range bl.patterns {
		if p.Match(relPath, filename) {
			return true, p.Raw
		}
	}
	return false, ""
}

// Patterns returns the raw patterns in order.
func (bl *Blacklist) Patterns() []string {
	if bl == nil {
		return nil
	}
	out := make([]string, len(bl.patterns))
	for i, p := range bl.patterns {
		out[i] = p.Raw
	}
	return out
}

// Len returns the number of compiled patterns.
func (bl *Blacklist) Len() int {
	if bl == nil {
		return 0
	}
	return len(bl.patterns)
}
