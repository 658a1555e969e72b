package config

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Test Plan for Config System:
// - Default() is normalized and valid
// - AllowedExtensions() honours includeGlobalExtensions and active project types
// - BlacklistPatterns() appends VCS exclusions only when version-control filtering is on
// - FileRepository falls back to defaults for a missing or malformed file
// - FileRepository writes pretty-printed camelCase JSON that loads back identically
// - Environment variables override scalar settings in the effective view only
// - Dotted project-type names survive a save and load
// - Service rejects empty, duplicate and missing values and leaves state unchanged
// - Service persists every successful mutation

func TestDefault_IsNormalizedAndValid(t *testing.T) {
	cfg := Default()

	assert.Equal(t, cfg, Normalize(cfg))
	require.NoError(t, Validate(cfg))
	assert.True(t, cfg.IncludeGlobalExtensions)
	assert.False(t, cfg.FilterUsingVersionControl)
	assert.Equal(t, DefaultLargeResultThreshold, cfg.LargeResultThreshold)
	assert.Equal(t, DefaultMaxFileSizeKB, cfg.MaxFileSizeKB)
	for _, pt := range Catalog {
		assert.Contains(t, cfg.CustomExtensionsByProjectType, pt.Name)
	}
}

func TestNormalize(t *testing.T) {
	cfg := FilterConfiguration{
		ProjectTypes:                  []string{" Node", "node", ""},
		GlobalExtensions:              []string{"MD", ".md", "js", " "},
		GlobalBlacklistPatterns:       []string{"Dist", "Dist", " *.log "},
		CustomExtensionsByProjectType: map[string][]string{"Python": {"py", ".PY"}},
	}

	got := Normalize(cfg)
	assert.Equal(t, []string{"node"}, got.ProjectTypes)
	assert.Equal(t, []string{".md", ".js"}, got.GlobalExtensions)
	assert.Equal(t, []string{"Dist", "*.log"}, got.GlobalBlacklistPatterns)
	assert.Equal(t, map[string][]string{"python": {".py"}}, got.CustomExtensionsByProjectType)
	assert.NotNil(t, got.CustomBlacklistPatternsByProjectType)
	assert.Equal(t, DefaultLargeResultThreshold, got.LargeResultThreshold)
}

func TestValidate_ReportsAllLimits(t *testing.T) {
	cfg := Default()
	cfg.LargeResultThreshold = -1
	cfg.MaxFileSizeKB = -5

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Contains(t, err.Error(), "largeResultThreshold")
	assert.Contains(t, err.Error(), "maxFileSizeKB")
}

func TestAllowedExtensions(t *testing.T) {
	cfg := FilterConfiguration{
		IncludeGlobalExtensions:       true,
		GlobalExtensions:              []string{".md"},
		ProjectTypes:                  []string{"node"},
		CustomExtensionsByProjectType: map[string][]string{"node": {".js"}, "python": {".py"}},
	}

	assert.Equal(t, []string{".js", ".md"}, cfg.AllowedExtensions().Sorted())

	cfg.IncludeGlobalExtensions = false
	assert.Equal(t, []string{".js"}, cfg.AllowedExtensions().Sorted())

	cfg.ProjectTypes = nil
	assert.Empty(t, cfg.AllowedExtensions())
}

func TestBlacklistPatterns(t *testing.T) {
	cfg := FilterConfiguration{
		GlobalBlacklistPatterns:              []string{"dist"},
		ProjectTypes:                         []string{"python"},
		CustomBlacklistPatternsByProjectType: map[string][]string{"python": {"__pycache__"}, "node": {"coverage"}},
	}
	assert.Equal(t, []string{"dist", "__pycache__"}, cfg.BlacklistPatterns())

	cfg.FilterUsingVersionControl = true
	assert.Equal(t, []string{"dist", "__pycache__", ".git", "node_modules"}, cfg.BlacklistPatterns())

	bl, err := cfg.Blacklist("*.tmp")
	require.NoError(t, err)
	matched, pattern := bl.Match("node_modules/x.js", "x.js")
	assert.True(t, matched)
	assert.Equal(t, "node_modules", pattern)
}

func TestFileRepository_MissingFileUsesDefaults(t *testing.T) {
	repo := NewFileRepository(afero.NewMemMapFs(), "/cfg/config.json", zaptest.NewLogger(t))

	cfg, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFileRepository_MalformedFileFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.json", []byte("{not json"), 0o644))
	repo := NewFileRepository(fs, "/cfg/config.json", zaptest.NewLogger(t))

	cfg, err := repo.Load()
	assert.ErrorIs(t, err, ErrMalformedConfig)
	assert.Equal(t, Default(), cfg)

	svc := NewService(repo, zaptest.NewLogger(t))
	assert.Equal(t, Default(), svc.Get())
}

func TestFileRepository_SaveWritesPrettyCamelCase(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewFileRepository(fs, "/cfg/nested/config.json", zaptest.NewLogger(t))

	cfg := Default()
	cfg.ProjectTypes = []string{"node"}
	cfg.FilterUsingVersionControl = true
	require.NoError(t, repo.Save(cfg))

	data, err := afero.ReadFile(fs, "/cfg/nested/config.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"includeGlobalExtensions\": true,")
	assert.Contains(t, string(data), "\"customBlacklistPatternsByProjectType\"")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "filterUsingVersionControl")

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	exists, err := afero.Exists(fs, "/cfg/nested/config.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileRepository_PartialFileKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{"projectTypes": ["Go"], "globalExtensions": ["txt"], "maxFileSizeKB": 64}`
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.json", []byte(content), 0o644))

	cfg, err := NewFileRepository(fs, "/cfg/config.json", zaptest.NewLogger(t)).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, cfg.ProjectTypes)
	assert.Equal(t, []string{".txt"}, cfg.GlobalExtensions)
	assert.Equal(t, 64, cfg.MaxFileSizeKB)
	assert.Equal(t, Default().GlobalBlacklistPatterns, cfg.GlobalBlacklistPatterns)
	assert.Equal(t, DefaultLargeResultThreshold, cfg.LargeResultThreshold)
	assert.True(t, cfg.IncludeGlobalExtensions)
}

func TestFileRepository_DottedProjectTypeRoundTrips(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewFileRepository(fs, "/cfg/config.json", zaptest.NewLogger(t))
	svc := NewService(repo, zaptest.NewLogger(t))

	require.NoError(t, svc.AddProjectType("next.js"))
	require.NoError(t, svc.AddExtension(".jsx", "next.js"))
	require.NoError(t, svc.AddBlacklistPattern(".next", "next.js"))
	require.NoError(t, svc.AddExtension(".vue", ""))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"next.js"}, loaded.ProjectTypes)
	assert.Equal(t, []string{".jsx"}, loaded.CustomExtensionsByProjectType["next.js"])
	assert.Equal(t, []string{".next"}, loaded.CustomBlacklistPatternsByProjectType["next.js"])
	assert.Contains(t, loaded.GlobalExtensions, ".vue")
	assert.Equal(t, svc.Stored(), loaded)
}

func TestFileRepository_NegativeLimitsFallBackToDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{"largeResultThreshold": -3, "maxFileSizeKB": -1, "projectTypes": ["go"]}`
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.json", []byte(content), 0o644))

	cfg, err := NewFileRepository(fs, "/cfg/config.json", zaptest.NewLogger(t)).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultLargeResultThreshold, cfg.LargeResultThreshold)
	assert.Equal(t, DefaultMaxFileSizeKB, cfg.MaxFileSizeKB)
	assert.Equal(t, []string{"go"}, cfg.ProjectTypes)
	require.NoError(t, Validate(cfg))
}

func TestEnvOverrides_AffectOnlyTheEffectiveView(t *testing.T) {
	t.Setenv("CODECLIP_FILTERUSINGVERSIONCONTROL", "true")
	t.Setenv("CODECLIP_LARGERESULTTHRESHOLD", "7")

	repo := NewFileRepository(afero.NewMemMapFs(), "/cfg/config.json", zaptest.NewLogger(t))
	svc := NewService(repo, zaptest.NewLogger(t), WithOverrides(EnvOverrides()))

	effective := svc.Get()
	assert.True(t, effective.FilterUsingVersionControl)
	assert.Equal(t, 7, effective.LargeResultThreshold)

	require.NoError(t, svc.AddExtension(".zig", ""))

	persisted, err := repo.Load()
	require.NoError(t, err)
	assert.False(t, persisted.FilterUsingVersionControl)
	assert.Equal(t, DefaultLargeResultThreshold, persisted.LargeResultThreshold)
	assert.Contains(t, persisted.GlobalExtensions, ".zig")
	assert.Equal(t, persisted, svc.Stored())
}

func TestEnvOverrides_IgnoresNonPositiveLimits(t *testing.T) {
	t.Setenv("CODECLIP_MAXFILESIZEKB", "-5")

	cfg := EnvOverrides()(Default())
	assert.Equal(t, DefaultMaxFileSizeKB, cfg.MaxFileSizeKB)
}

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo, zaptest.NewLogger(t)), repo
}

func TestService_Toggle(t *testing.T) {
	svc, repo := newTestService(t)

	value, err := svc.Toggle("filter-using-version-control")
	require.NoError(t, err)
	assert.True(t, value)
	assert.True(t, svc.Get().FilterUsingVersionControl)

	value, err = svc.Toggle(SettingIncludeGlobalExtensions)
	require.NoError(t, err)
	assert.False(t, value)
	assert.Equal(t, 2, repo.Saves())

	_, err = svc.Toggle("colour")
	assert.ErrorIs(t, err, ErrUnknownSetting)
	assert.Equal(t, 2, repo.Saves())
}

func TestService_ProjectTypes(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.AddProjectType(" Node "))
	assert.Equal(t, []string{"node"}, svc.Get().ProjectTypes)

	assert.ErrorIs(t, svc.AddProjectType("NODE"), ErrDuplicate)
	assert.ErrorIs(t, svc.AddProjectType("  "), ErrEmptyValue)

	require.NoError(t, svc.AddProjectType("elixir"))
	assert.Equal(t, []string{"node", "elixir"}, svc.Get().ProjectTypes)

	require.NoError(t, svc.RemoveProjectType("node"))
	assert.Equal(t, []string{"elixir"}, svc.Get().ProjectTypes)
	assert.NotEmpty(t, svc.Get().CustomExtensionsByProjectType["node"])

	assert.ErrorIs(t, svc.RemoveProjectType("node"), ErrNotFound)
}

func TestService_AddProjectTypeSeedsCatalog(t *testing.T) {
	repo := NewMemoryRepository()
	cfg := Default()
	delete(cfg.CustomExtensionsByProjectType, "go")
	delete(cfg.CustomBlacklistPatternsByProjectType, "go")
	require.NoError(t, repo.Save(cfg))
	svc := NewService(repo, zaptest.NewLogger(t))

	require.NoError(t, svc.AddProjectType("go"))
	got := svc.Get()
	assert.Equal(t, []string{".go", ".mod"}, got.CustomExtensionsByProjectType["go"])
	assert.Equal(t, []string{"vendor"}, got.CustomBlacklistPatternsByProjectType["go"])
}

func TestService_Extensions(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.AddExtension("PROTO", ""))
	assert.Contains(t, svc.Get().GlobalExtensions, ".proto")

	err := svc.AddExtension(".proto", "")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.True(t, IsValidationError(err))

	assert.ErrorIs(t, svc.AddExtension("", ""), ErrEmptyValue)

	require.NoError(t, svc.AddExtension("vue", "node"))
	assert.Contains(t, svc.Get().CustomExtensionsByProjectType["node"], ".vue")

	assert.ErrorIs(t, svc.AddExtension("x", "cobol"), ErrUnknownProjectType)

	require.NoError(t, svc.RemoveExtension(".Proto", ""))
	assert.NotContains(t, svc.Get().GlobalExtensions, ".proto")
	assert.ErrorIs(t, svc.RemoveExtension("proto", ""), ErrNotFound)
}

func TestService_BlacklistPatterns(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.AddBlacklistPattern("*.snap", ""))
	assert.Contains(t, svc.Get().GlobalBlacklistPatterns, "*.snap")
	assert.ErrorIs(t, svc.AddBlacklistPattern("*.snap", ""), ErrDuplicate)
	assert.ErrorIs(t, svc.AddBlacklistPattern("   ", ""), ErrEmptyValue)

	require.NoError(t, svc.AddBlacklistPattern("Migrations", "python"))
	assert.Contains(t, svc.Get().CustomBlacklistPatternsByProjectType["python"], "Migrations")

	require.NoError(t, svc.RemoveBlacklistPattern("*.snap", ""))
	assert.ErrorIs(t, svc.RemoveBlacklistPattern("*.snap", ""), ErrNotFound)
}

func TestService_FailedValidationLeavesStateUnchanged(t *testing.T) {
	svc, repo := newTestService(t)
	before := svc.Get()

	_, err := svc.Update(func(c *FilterConfiguration) error {
		c.MaxFileSizeKB = -1
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Equal(t, before, svc.Get())
	assert.Zero(t, repo.Saves())
}

type failingRepo struct{ MemoryRepository }

func (f *failingRepo) Save(FilterConfiguration) error { return errors.New("disk full") }

func TestService_SaveFailureLeavesStateUnchanged(t *testing.T) {
	svc := NewService(&failingRepo{}, zaptest.NewLogger(t))
	before := svc.Get()

	err := svc.AddExtension(".zig", "")
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.Equal(t, before, svc.Get())
}

func TestService_Reset(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.AddProjectType("rust"))

	cfg, err := svc.Reset()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, Default(), svc.Get())
}
