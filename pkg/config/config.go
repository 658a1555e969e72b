// Package config holds the persisted filter configuration and the service that owns it.
package config

import (
	"sort"

	"codeclip/pkg/filter"
	"codeclip/pkg/vcs"
)

// Setting names accepted by Toggle.
const (
	SettingIncludeGlobalExtensions   = "includeGlobalExtensions"
	SettingFilterUsingVersionControl = "filterUsingVersionControl"
)

const (
	DefaultLargeResultThreshold = 50
	DefaultMaxFileSizeKB        = 1024
)

// FilterConfiguration decides which files a scan includes.
// It is persisted as one flat JSON object with camelCase keys.
type FilterConfiguration struct {
	IncludeGlobalExtensions              bool                `json:"includeGlobalExtensions" mapstructure:"includeGlobalExtensions"`
	FilterUsingVersionControl            bool                `json:"filterUsingVersionControl" mapstructure:"filterUsingVersionControl"`
	ProjectTypes                         []string            `json:"projectTypes" mapstructure:"projectTypes"`
	GlobalExtensions                     []string            `json:"globalExtensions" mapstructure:"globalExtensions"`
	CustomExtensionsByProjectType        map[string][]string `json:"customExtensionsByProjectType" mapstructure:"customExtensionsByProjectType"`
	GlobalBlacklistPatterns              []string            `json:"globalBlacklistPatterns" mapstructure:"globalBlacklistPatterns"`
	CustomBlacklistPatternsByProjectType map[string][]string `json:"customBlacklistPatternsByProjectType" mapstructure:"customBlacklistPatternsByProjectType"`
	LargeResultThreshold                 int                 `json:"largeResultThreshold" mapstructure:"largeResultThreshold"`
	MaxFileSizeKB                        int                 `json:"maxFileSizeKB" mapstructure:"maxFileSizeKB"`
}

// ProjectType is a named bundle of default extensions and blacklist patterns.
type ProjectType struct {
	Name       string
	Extensions []string
	Blacklist  []string
}

// Catalog lists the built-in project types. Adding one of these names seeds its
// extensions and blacklist patterns when the configuration has none for it yet.
var Catalog = []ProjectType{
	{
		Name:       "node",
		Extensions: []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".json"},
		Blacklist:  []string{"node_modules", "dist", "coverage", "*.min.js", "package-lock.json"},
	},
	{
		Name:       "python",
		Extensions: []string{".py", ".pyi", ".toml", ".cfg"},
		Blacklist:  []string{"__pycache__", ".venv", "venv", ".pytest_cache", "*.pyc"},
	},
	{
		Name:       "go",
		Extensions: []string{".go", ".mod"},
		Blacklist:  []string{"vendor"},
	},
	{
		Name:       "rust",
		Extensions: []string{".rs", ".toml"},
		Blacklist:  []string{"target"},
	},
	{
		Name:       "java",
		Extensions: []string{".java", ".kt", ".gradle", ".xml", ".properties"},
		Blacklist:  []string{"target", "build", ".gradle"},
	},
	{
		Name:       "web",
		Extensions: []string{".html", ".css", ".scss", ".vue", ".svelte"},
		Blacklist:  []string{"dist", ".cache"},
	},
	{
		Name:       "ruby",
		Extensions: []string{".rb", ".erb", ".rake", ".gemspec"},
		Blacklist:  []string{".bundle", "vendor/bundle"},
	},
}

// LookupProjectType finds a catalog entry by lowercase name.
func LookupProjectType(name string) (ProjectType, bool) {
	for _, pt := range Catalog {
		if pt.Name == name {
			return pt, true
		}
	}
	return ProjectType{}, false
}

// Default returns the configuration used when nothing is persisted.
func Default() FilterConfiguration {
	cfg := FilterConfiguration{
		IncludeGlobalExtensions:   true,
		FilterUsingVersionControl: false,
		ProjectTypes:              []string{},
		GlobalExtensions:          []string{".md", ".txt", ".json", ".yaml", ".yml", ".sh", ".dockerfile"},
		GlobalBlacklistPatterns: []string{
			"node_modules", ".git", "dist", "build", "out", "coverage", "*.min.js", "*.map", "*.lock",
		},
		CustomExtensionsByProjectType:        make(map[string][]string, len(Catalog)),
		CustomBlacklistPatternsByProjectType: make(map[string][]string, len(Catalog)),
		LargeResultThreshold:                 DefaultLargeResultThreshold,
		MaxFileSizeKB:                        DefaultMaxFileSizeKB,
	}
	for _, pt := range Catalog {
		cfg.CustomExtensionsByProjectType[pt.Name] = append([]string(nil), pt.Extensions...)
		cfg.CustomBlacklistPatternsByProjectType[pt.Name] = append([]string(nil), pt.Blacklist...)
	}
	return cfg
}

// Clone returns a deep copy.
func (c FilterConfiguration) Clone() FilterConfiguration {
	out := c
	out.ProjectTypes = cloneStrings(c.ProjectTypes)
	out.GlobalExtensions = cloneStrings(c.GlobalExtensions)
	out.GlobalBlacklistPatterns = cloneStrings(c.GlobalBlacklistPatterns)
	out.CustomExtensionsByProjectType = cloneMap(c.CustomExtensionsByProjectType)
	out.CustomBlacklistPatternsByProjectType = cloneMap(c.CustomBlacklistPatternsByProjectType)
	return out
}

// AllowedExtensions builds the extension allow-set from the global extensions (when
// included) and the custom extensions of every active project type.
func (c FilterConfiguration) AllowedExtensions() filter.ExtensionSet {
	allowed := filter.NewExtensionSet()
	if c.IncludeGlobalExtensions {
		allowed.Add(c.GlobalExtensions...)
	}
	for _, pt := range c.ProjectTypes {
		allowed.Add(c.CustomExtensionsByProjectType[pt]...)
	}
	return allowed
}

// BlacklistPatterns returns the active raw patterns in evaluation order: global patterns,
// then those of each active project type, then the version-control exclusions.
func (c FilterConfiguration) BlacklistPatterns() []string {
	patterns := cloneStrings(c.GlobalBlacklistPatterns)
	for _, pt := range c.ProjectTypes {
		patterns = append(patterns, c.CustomBlacklistPatternsByProjectType[pt]...)
	}
	if c.FilterUsingVersionControl {
		patterns = append(patterns, vcs.MetadataDir, vcs.DependencyDir)
	}
	return patterns
}

// Blacklist compiles BlacklistPatterns plus any extra patterns.
func (c FilterConfiguration) Blacklist(extra ...string) (*filter.Blacklist, error) {
	return filter.NewBlacklist(append(c.BlacklistPatterns(), extra...)...)
}

// KnownProjectTypes lists every project type that has configuration, sorted.
func (c FilterConfiguration) KnownProjectTypes() []string {
	seen := make(map[string]struct{})
	for name := range c.CustomExtensionsByProjectType {
		seen[name] = struct{}{}
	}
	for name := range c.CustomBlacklistPatternsByProjectType {
		seen[name] = struct{}{}
	}
	for _, name := range c.ProjectTypes {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append(make([]string, 0, len(in)), in...)
}

func cloneMap(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = cloneStrings(v)
	}
	return out
}
