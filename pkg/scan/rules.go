// File: pkg/scan/rules.go
package scan

import (
	"fmt"

	"codeclip/pkg/config"
	"codeclip/pkg/filter"
	"codeclip/pkg/vcs"
)

// Decision is the outcome of evaluating one directory entry.
type Decision int

const (
	Include Decision = iota
	Descend
	SkipBlacklisted
	SkipExtension
	SkipUntracked
	SkipTooLarge
)

func (d Decision) String() string {
	switch d {
	case Include:
		return "include"
	case Descend:
		return "descend"
	case SkipBlacklisted:
		return "blacklisted"
	case SkipExtension:
		return "extension not allowed"
	case SkipUntracked:
		return "not tracked"
	case SkipTooLarge:
		return "too large"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Rules is the inclusion policy of a scan.
type Rules struct {
	Extensions        filter.ExtensionSet
	Blacklist         *filter.Blacklist
	UseVersionControl bool  // Restrict files to those tracked by git when the root is a repository.
	MaxFileSize       int64 // Bytes; zero means unlimited.
	Unfiltered        bool  // Skip extension and blacklist checks.
}

// RulesFromConfig derives the policy from cfg. Extra patterns (e.g. from an ignore file)
// are appended to the blacklist.
func RulesFromConfig(cfg config.FilterConfiguration, extraPatterns ...string) (Rules, error) {
	bl, err := cfg.Blacklist(extraPatterns...)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to compile blacklist: %w", err)
	}
	return Rules{
		Extensions:        cfg.AllowedExtensions(),
		Blacklist:         bl,
		UseVersionControl: cfg.FilterUsingVersionControl,
		MaxFileSize:       int64(cfg.MaxFileSizeKB) * 1024,
	}, nil
}

// UnfilteredRules accepts every regular file up to maxFileSize bytes.
func UnfilteredRules(maxFileSize int64) Rules {
	return Rules{Unfiltered: true, MaxFileSize: maxFileSize}
}

// Decide evaluates one entry. A nil tracked set means tracking is not applied.
func (r Rules) Decide(relPath, name string, isDir bool, size int64, tracked vcs.TrackedSet) Decision {
	if !r.Unfiltered {
		if matched, _ := r.Blacklist.Match(relPath, name); matched {
			return SkipBlacklisted
		}
	}
	if isDir {
		return Descend
	}
	if !r.Unfiltered && !filter.IsExtensionAllowed(name, r.Extensions) {
		return SkipExtension
	}
	if tracked != nil && !tracked.Contains(relPath) {
		return SkipUntracked
	}
	if r.MaxFileSize > 0 && size > r.MaxFileSize {
		return SkipTooLarge
	}
	return Include
}
