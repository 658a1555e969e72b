package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"codeclip/pkg/filter"
)

// NormalizeProjectType lowercases and trims a project type name.
func NormalizeProjectType(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize returns cfg with every collection in canonical form: project types and map keys
// lowercased, extensions normalized, blanks and duplicates dropped (first occurrence wins),
// nil collections replaced by empty ones and zero limits reset to their defaults. Negative
// limits are left for Validate to reject.
// Blacklist patterns keep their case.
func Normalize(cfg FilterConfiguration) FilterConfiguration {
	out := cfg.Clone()

	out.ProjectTypes = dedupe(out.ProjectTypes, NormalizeProjectType)
	out.GlobalExtensions = dedupe(out.GlobalExtensions, filter.NormalizeExtension)
	out.GlobalBlacklistPatterns = dedupe(out.GlobalBlacklistPatterns, strings.TrimSpace)
	out.CustomExtensionsByProjectType = normalizeMap(out.CustomExtensionsByProjectType, filter.NormalizeExtension)
	out.CustomBlacklistPatternsByProjectType = normalizeMap(out.CustomBlacklistPatternsByProjectType, strings.TrimSpace)

	if out.LargeResultThreshold == 0 {
		out.LargeResultThreshold = DefaultLargeResultThreshold
	}
	if out.MaxFileSizeKB == 0 {
		out.MaxFileSizeKB = DefaultMaxFileSizeKB
	}
	return out
}

// Validate reports every invalid field at once.
func Validate(cfg FilterConfiguration) error {
	var errs error
	if cfg.LargeResultThreshold < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: largeResultThreshold must be positive, got %d", ErrInvalidLimit, cfg.LargeResultThreshold))
	}
	if cfg.MaxFileSizeKB < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: maxFileSizeKB must be positive, got %d", ErrInvalidLimit, cfg.MaxFileSizeKB))
	}
	for _, p := range cfg.GlobalBlacklistPatterns {
		if _, err := filter.CompilePattern(p); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid blacklist pattern %q: %w", p, err))
		}
	}
	for pt, patterns := range cfg.CustomBlacklistPatternsByProjectType {
		for _, p := range patterns {
			if _, err := filter.CompilePattern(p); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("invalid blacklist pattern %q for project type %s: %w", p, pt, err))
			}
		}
	}
	return errs
}

func dedupe(values []string, norm func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		n := norm(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func normalizeMap(in map[string][]string, norm func(string) string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		key := NormalizeProjectType(k)
		if key == "" {
			continue
		}
		out[key] = dedupe(append(out[key], v...), norm)
	}
	return out
}
