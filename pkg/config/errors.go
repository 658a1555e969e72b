package config

import "errors"

var (
	// ErrEmptyValue indicates a blank extension, pattern or project type
	ErrEmptyValue = errors.New("value must not be empty")

	// ErrDuplicate indicates the value is already present
	ErrDuplicate = errors.New("value already present")

	// ErrNotFound indicates the value to remove is not present
	ErrNotFound = errors.New("value not found")

	// ErrUnknownSetting indicates a toggle of a setting that is not a boolean option
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrUnknownProjectType indicates a project-scoped change to a type with no configuration
	ErrUnknownProjectType = errors.New("unknown project type")

	// ErrMalformedConfig indicates the persisted configuration could not be decoded
	ErrMalformedConfig = errors.New("malformed configuration")

	// ErrInvalidLimit indicates a negative threshold or size limit
	ErrInvalidLimit = errors.New("invalid limit")
)
