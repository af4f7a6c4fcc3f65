// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/modweave/modweave/pkg/modedit"
)

const (
	// SaveModeImmediate writes every edit to disk before the edit returns.
	SaveModeImmediate SaveMode = "immediate"
	// SaveModeQueued coalesces edits and writes them after Save.Delay.
	SaveModeQueued SaveMode = "queued"

	// LogLevelDebug logs every editor event.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs rejected edits and skipped documents.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failed writes only.
	LogLevelError LogLevel = "error"

	// DefaultSaveDelay is the debounce window of queued saves.
	DefaultSaveDelay = 500 * time.Millisecond
)

var (
	// ErrInvalidSaveMode is returned when a SaveMode value is not recognized.
	ErrInvalidSaveMode = errors.New("invalid save mode")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidSaveDelay is returned when a queued save delay is negative.
	ErrInvalidSaveDelay = errors.New("invalid save delay")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// SaveMode selects how edits reach the mod directory.
	SaveMode string

	// InvalidSaveModeError is returned when a SaveMode value is not recognized.
	// It wraps ErrInvalidSaveMode for errors.Is() compatibility.
	InvalidSaveModeError struct {
		Value SaveMode
	}

	// LogLevel is the minimum level of the injected logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidSaveDelayError is returned for a negative save delay.
	InvalidSaveDelayError struct {
		Value time.Duration
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ReplaceNonASCIIOnImport folds group and option names to ASCII before
		// they become file names.
		ReplaceNonASCIIOnImport bool `json:"replace_non_ascii_on_import" mapstructure:"replace_non_ascii_on_import"`
		// ModDirectory is the root holding one directory per mod. Empty means
		// <config dir>/mods; relative paths resolve against the config file.
		ModDirectory string `json:"mod_directory" mapstructure:"mod_directory"`
		// Save configures persistence of edits.
		Save SaveConfig `json:"save" mapstructure:"save"`
		// UI configures the command line output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Log configures the injected logger.
		Log LogConfig `json:"log" mapstructure:"log"`

		// Source is the file the configuration was read from, empty for defaults.
		Source string `json:"-" mapstructure:"-"`
	}

	// SaveConfig configures persistence of edits.
	SaveConfig struct {
		Mode  SaveMode      `json:"mode" mapstructure:"mode"`
		Delay time.Duration `json:"delay" mapstructure:"delay"`
	}

	// UIConfig configures the command line output.
	UIConfig struct {
		// Verbose prints editor events as they happen.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// LogConfig configures the injected logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// String returns the string representation of the SaveMode.
func (m SaveMode) String() string { return string(m) }

// IsValid returns whether the SaveMode is one of the defined modes.
func (m SaveMode) IsValid() (bool, []error) {
	switch m {
	case SaveModeImmediate, SaveModeQueued:
		return true, nil
	default:
		return false, []error{&InvalidSaveModeError{Value: m}}
	}
}

// SaveType maps the mode onto the editor's save request.
func (m SaveMode) SaveType() modedit.SaveType {
	if m == SaveModeQueued {
		return modedit.SaveQueued
	}
	return modedit.SaveImmediate
}

// Error implements the error interface for InvalidSaveModeError.
func (e *InvalidSaveModeError) Error() string {
	return fmt.Sprintf("invalid save mode %q (valid: immediate, queued)", e.Value)
}

// Unwrap returns ErrInvalidSaveMode for errors.Is() compatibility.
func (e *InvalidSaveModeError) Unwrap() error { return ErrInvalidSaveMode }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts l to a charmbracelet/log level. Unknown values map to info.
func (l LogLevel) Level() log.Level {
	level, err := log.ParseLevel(string(l))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidSaveDelayError.
func (e *InvalidSaveDelayError) Error() string {
	return fmt.Sprintf("invalid save delay %s: must not be negative", e.Value)
}

// Unwrap returns ErrInvalidSaveDelay for errors.Is() compatibility.
func (e *InvalidSaveDelayError) Unwrap() error { return ErrInvalidSaveDelay }

// IsValid returns whether the SaveConfig has valid fields.
func (c SaveConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Delay < 0 {
		errs = append(errs, &InvalidSaveDelayError{Value: c.Delay})
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.ModDirectory) != c.ModDirectory {
		errs = append(errs, fmt.Errorf("mod_directory %q: surrounding whitespace", c.ModDirectory))
	}
	if valid, fieldErrs := c.Save.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap exposes ErrInvalidConfig and every field error to errors.Is/As.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ReplaceNonASCIIOnImport: false,
		ModDirectory:            "", // <config dir>/mods
		Save: SaveConfig{
			Mode:  SaveModeImmediate,
			Delay: DefaultSaveDelay,
		},
		UI:  UIConfig{Verbose: false},
		Log: LogConfig{Level: LogLevelInfo},
	}
}
