package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"codeclip/pkg/filter"
)

// Service owns the live configuration. Every mutation goes through Update, which works on a
// copy and only swaps it in after validation and a successful save.
//
// The stored configuration is what gets persisted. Overrides only shape what Get returns, so
// they never leak into the file.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	cfg       FilterConfiguration
	overrides Overrides
	logger    *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithOverrides sets the transformation applied to the configuration returned by Get.
func WithOverrides(o Overrides) ServiceOption {
	return func(s *Service) {
		s.overrides = o
	}
}

// NewService loads the configuration from repo. Load failures fall back to Default() with a
// warning; they are never fatal.
func NewService(repo Repository, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := repo.Load()
	if err != nil {
		logger.Warn("Failed to load configuration, using defaults", zap.Error(err))
		cfg = Default()
	}

	s := &Service{repo: repo, cfg: Normalize(cfg), logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the effective configuration: the stored one with overrides applied.
func (s *Service) Get() FilterConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effective()
}

// Stored returns a copy of the configuration as persisted, without overrides.
func (s *Service) Stored() FilterConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

func (s *Service) effective() FilterConfiguration {
	cfg := s.cfg.Clone()
	if s.overrides != nil {
		cfg = s.overrides(cfg)
	}
	return cfg
}

// Update applies fn to a copy of the stored configuration, then normalizes, validates and
// persists it. It returns the effective configuration. On any error the stored configuration
// is left unchanged.
func (s *Service) Update(fn func(*FilterConfiguration) error) (FilterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Clone()
	if err := fn(&next); err != nil {
		return s.effective(), err
	}
	next = Normalize(next)
	if err := Validate(next); err != nil {
		return s.effective(), fmt.Errorf("invalid configuration: %w", err)
	}
	if err := s.repo.Save(next); err != nil {
		s.logger.Error("Failed to persist configuration", zap.Error(err))
		return s.effective(), fmt.Errorf("failed to save configuration: %w", err)
	}

	s.cfg = next
	return s.effective(), nil
}

// Reset restores and persists the defaults.
func (s *Service) Reset() (FilterConfiguration, error) {
	return s.Update(func(c *FilterConfiguration) error {
		*c = Default()
		return nil
	})
}

// Toggle flips a boolean setting and returns its new value. Setting names are matched
// case-insensitively and may be written in kebab case.
func (s *Service) Toggle(setting string) (bool, error) {
	var value bool
	_, err := s.Update(func(c *FilterConfiguration) error {
		switch canonicalSetting(setting) {
		case strings.ToLower(SettingIncludeGlobalExtensions):
			c.IncludeGlobalExtensions = !c.IncludeGlobalExtensions
			value = c.IncludeGlobalExtensions
		case strings.ToLower(SettingFilterUsingVersionControl):
			c.FilterUsingVersionControl = !c.FilterUsingVersionControl
			value = c.FilterUsingVersionControl
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSetting, setting)
		}
		return nil
	})
	return value, err
}

func canonicalSetting(s string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s)))
}

// AddProjectType activates a project type. Catalog types get their default extensions and
// patterns seeded when the configuration has none for them.
func (s *Service) AddProjectType(name string) error {
	name = NormalizeProjectType(name)
	if name == "" {
		return fmt.Errorf("project type: %w", ErrEmptyValue)
	}
	_, err := s.Update(func(c *FilterConfiguration) error {
		if contains(c.ProjectTypes, name) {
			return fmt.Errorf("project type %q: %w", name, ErrDuplicate)
		}
		c.ProjectTypes = append(c.ProjectTypes, name)
		if pt, ok := LookupProjectType(name); ok {
			if _, seeded := c.CustomExtensionsByProjectType[name]; !seeded {
				c.CustomExtensionsByProjectType[name] = append([]string(nil), pt.Extensions...)
			}
			if _, seeded := c.CustomBlacklistPatternsByProjectType[name]; !seeded {
				c.CustomBlacklistPatternsByProjectType[name] = append([]string(nil), pt.Blacklist...)
			}
		}
		return nil
	})
	return err
}

// RemoveProjectType deactivates a project type. Its custom lists are kept.
func (s *Service) RemoveProjectType(name string) error {
	name = NormalizeProjectType(name)
	if name == "" {
		return fmt.Errorf("project type: %w", ErrEmptyValue)
	}
	_, err := s.Update(func(c *FilterConfiguration) error {
		idx := indexOf(c.ProjectTypes, name)
		if idx < 0 {
			return fmt.Errorf("project type %q: %w", name, ErrNotFound)
		}
		c.ProjectTypes = append(c.ProjectTypes[:idx], c.ProjectTypes[idx+1:]...)
		return nil
	})
	return err
}

// AddExtension adds ext to the global extensions, or to projectType's custom extensions
// when projectType is not empty.
func (s *Service) AddExtension(ext, projectType string) error {
	norm := filter.NormalizeExtension(ext)
	if norm == "" {
		return fmt.Errorf("extension: %w", ErrEmptyValue)
	}
	return s.editList(extensionLists, projectType, func(list []string) ([]string, error) {
		if contains(list, norm) {
			return nil, fmt.Errorf("extension %q: %w", norm, ErrDuplicate)
		}
		return append(list, norm), nil
	})
}

// RemoveExtension is the inverse of AddExtension.
func (s *Service) RemoveExtension(ext, projectType string) error {
	norm := filter.NormalizeExtension(ext)
	if norm == "" {
		return fmt.Errorf("extension: %w", ErrEmptyValue)
	}
	return s.editList(extensionLists, projectType, func(list []string) ([]string, error) {
		return remove(list, norm, "extension")
	})
}

// AddBlacklistPattern adds a raw pattern globally or for projectType.
func (s *Service) AddBlacklistPattern(pattern, projectType string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("blacklist pattern: %w", ErrEmptyValue)
	}
	if _, err := filter.CompilePattern(pattern); err != nil {
		return err
	}
	return s.editList(blacklistLists, projectType, func(list []string) ([]string, error) {
		if contains(list, pattern) {
			return nil, fmt.Errorf("blacklist pattern %q: %w", pattern, ErrDuplicate)
		}
		return append(list, pattern), nil
	})
}

// RemoveBlacklistPattern is the inverse of AddBlacklistPattern.
func (s *Service) RemoveBlacklistPattern(pattern, projectType string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("blacklist pattern: %w", ErrEmptyValue)
	}
	return s.editList(blacklistLists, projectType, func(list []string) ([]string, error) {
		return remove(list, pattern, "blacklist pattern")
	})
}

// IsValidationError reports whether err is a user-input rejection rather than an
// environment failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnknownSetting) ||
		errors.Is(err, ErrUnknownProjectType)
}

// listKind selects the global list and the per-project-type map of one setting family.
type listKind struct {
	global  func(*FilterConfiguration) *[]string
	byScope func(*FilterConfiguration) map[string][]string
}

var (
	extensionLists = listKind{
		global:  func(c *FilterConfiguration) *[]string { return &c.GlobalExtensions },
		byScope: func(c *FilterConfiguration) map[string][]string { return c.CustomExtensionsByProjectType },
	}
	blacklistLists = listKind{
		global:  func(c *FilterConfiguration) *[]string { return &c.GlobalBlacklistPatterns },
		byScope: func(c *FilterConfiguration) map[string][]string { return c.CustomBlacklistPatternsByProjectType },
	}
)

// editList rewrites the global list, or projectType's list, through edit.
func (s *Service) editList(kind listKind, projectType string, edit func([]string) ([]string, error)) error {
	_, err := s.Update(func(c *FilterConfiguration) error {
		if strings.TrimSpace(projectType) == "" {
			list := kind.global(c)
			next, err := edit(*list)
			if err != nil {
				return err
			}
			*list = next
			return nil
		}

		key, err := scopedProjectType(c, projectType)
		if err != nil {
			return err
		}
		m := kind.byScope(c)
		next, err := edit(m[key])
		if err != nil {
			return err
		}
		m[key] = next
		return nil
	})
	return err
}

// scopedProjectType accepts project types that are active or already carry configuration.
func scopedProjectType(c *FilterConfiguration, projectType string) (string, error) {
	key := NormalizeProjectType(projectType)
	for _, known := range c.KnownProjectTypes() {
		if known == key {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProjectType, projectType)
}

func remove(list []string, v, what string) ([]string, error) {
	idx := indexOf(list, v)
	if idx < 0 {
		return nil, fmt.Errorf("%s %q: %w", what, v, ErrNotFound)
	}
	return append(list[:idx], list[idx+1:]...), nil
}

func contains(list []string, v string) bool {
	return indexOf(list, v) >= 0
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}
