package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment overrides, e.g. CODECLIP_MAXFILESIZEKB=256.
const EnvPrefix = "CODECLIP"

// FileName is the configuration file name inside the user config directory.
const FileName = "config.json"

// keyDelimiter replaces viper's "." nesting separator so project-type map keys such as
// "next.js" survive a load.
const keyDelimiter = "::"

// Keys that may be overridden from the environment.
var envKeys = []string{
	SettingIncludeGlobalExtensions,
	SettingFilterUsingVersionControl,
	"largeResultThreshold",
	"maxFileSizeKB",
}

// Repository loads and saves a FilterConfiguration.
type Repository interface {
	Load() (FilterConfiguration, error)
	Save(FilterConfiguration) error
}

// DefaultPath returns <user config dir>/codeclip/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "codeclip", FileName), nil
}

// FileRepository persists the configuration as a pretty-printed JSON file.
type FileRepository struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

// NewFileRepository creates a repository for the file at path on fs.
func NewFileRepository(fs afero.Fs, path string, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{fs: fs, path: path, logger: logger}
}

// Path returns the backing file path.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the persisted configuration. A missing file yields Default(). A file that cannot
// be decoded yields Default() together with an ErrMalformedConfig error. Environment overrides
// are not applied here; see EnvOverrides.
func (r *FileRepository) Load() (FilterConfiguration, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetFs(r.fs)
	v.SetConfigFile(r.path)
	v.SetConfigType("json")

	exists, err := afero.Exists(r.fs, r.path)
	if err != nil {
		return Default(), fmt.Errorf("failed to stat config file: %w", err)
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return Default(), fmt.Errorf("%w: %s: %v", ErrMalformedConfig, r.path, err)
		}
		r.logger.Debug("Read configuration file", zap.String("path", r.path))
	} else {
		r.logger.Debug("Configuration file not found, using defaults", zap.String("path", r.path))
	}

	var decoded FilterConfiguration
	if err := v.Unmarshal(&decoded); err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrMalformedConfig, r.path, err)
	}

	return r.resetInvalidLimits(Normalize(withDefaults(v, decoded))), nil
}

// resetInvalidLimits replaces negative limits read from the file with their defaults.
func (r *FileRepository) resetInvalidLimits(cfg FilterConfiguration) FilterConfiguration {
	if cfg.LargeResultThreshold < 0 {
		r.logger.Warn("Ignoring negative largeResultThreshold",
			zap.String("path", r.path), zap.Int("value", cfg.LargeResultThreshold))
		cfg.LargeResultThreshold = DefaultLargeResultThreshold
	}
	if cfg.MaxFileSizeKB < 0 {
		r.logger.Warn("Ignoring negative maxFileSizeKB",
			zap.String("path", r.path), zap.Int("value", cfg.MaxFileSizeKB))
		cfg.MaxFileSizeKB = DefaultMaxFileSizeKB
	}
	return cfg
}

// Overrides derives the effective configuration from the stored one.
type Overrides func(FilterConfiguration) FilterConfiguration

// EnvOverrides applies CODECLIP_* variables to the scalar settings, e.g.
// CODECLIP_MAXFILESIZEKB=256. The variables are read on every call.
func EnvOverrides() Overrides {
	return func(cfg FilterConfiguration) FilterConfiguration {
		v := viper.New()
		v.SetEnvPrefix(EnvPrefix)
		for _, key := range envKeys {
			_ = v.BindEnv(key)
		}

		if v.IsSet(SettingIncludeGlobalExtensions) {
			cfg.IncludeGlobalExtensions = v.GetBool(SettingIncludeGlobalExtensions)
		}
		if v.IsSet(SettingFilterUsingVersionControl) {
			cfg.FilterUsingVersionControl = v.GetBool(SettingFilterUsingVersionControl)
		}
		if v.IsSet("largeResultThreshold") {
			if n := v.GetInt("largeResultThreshold"); n > 0 {
				cfg.LargeResultThreshold = n
			}
		}
		if v.IsSet("maxFileSizeKB") {
			if n := v.GetInt("maxFileSizeKB"); n > 0 {
				cfg.MaxFileSizeKB = n
			}
		}
		return cfg
	}
}

// withDefaults fills every field the file and environment left unset.
func withDefaults(v *viper.Viper, cfg FilterConfiguration) FilterConfiguration {
	def := Default()
	if !v.IsSet("includeGlobalExtensions") {
		cfg.IncludeGlobalExtensions = def.IncludeGlobalExtensions
	}
	if !v.IsSet("filterUsingVersionControl") {
		cfg.FilterUsingVersionControl = def.FilterUsingVersionControl
	}
	if !v.IsSet("projectTypes") {
		cfg.ProjectTypes = def.ProjectTypes
	}
	if !v.IsSet("globalExtensions") {
		cfg.GlobalExtensions = def.GlobalExtensions
	}
	if !v.IsSet("customExtensionsByProjectType") {
		cfg.CustomExtensionsByProjectType = def.CustomExtensionsByProjectType
	}
	if !v.IsSet("globalBlacklistPatterns") {
		cfg.GlobalBlacklistPatterns = def.GlobalBlacklistPatterns
	}
	if !v.IsSet("customBlacklistPatternsByProjectType") {
		cfg.CustomBlacklistPatternsByProjectType = def.CustomBlacklistPatternsByProjectType
	}
	if !v.IsSet("largeResultThreshold") {
		cfg.LargeResultThreshold = def.LargeResultThreshold
	}
	if !v.IsSet("maxFileSizeKB") {
		cfg.MaxFileSizeKB = def.MaxFileSizeKB
	}
	return cfg
}

// Save writes cfg as indented JSON, replacing the file through a rename.
func (r *FileRepository) Save(cfg FilterConfiguration) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		r.logger.Error("Failed to create config directory", zap.String("path", r.path), zap.Error(err))
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, data, 0o644); err != nil {
		r.logger.Error("Failed to write config file", zap.String("path", tmp), zap.Error(err))
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		_ = r.fs.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	r.logger.Debug("Saved configuration", zap.String("path", r.path))
	return nil
}

// Marshal renders cfg the way it is persisted.
func Marshal(cfg FilterConfiguration) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return append(data, '\n'), nil
}

// MemoryRepository keeps the configuration in memory.
type MemoryRepository struct {
	mu    sync.Mutex
	cfg   *FilterConfiguration
	saves int
}

// NewMemoryRepository returns a repository that starts empty (Load yields Default()).
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load implements Repository.
func (m *MemoryRepository) Load() (FilterConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return Default(), nil
	}
	return m.cfg.Clone(), nil
}

// Save implements Repository.
func (m *MemoryRepository) Save(cfg FilterConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cfg.Clone()
	m.cfg = &c
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
