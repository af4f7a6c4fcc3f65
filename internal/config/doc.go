// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the modweave configuration directory
// ($XDG_CONFIG_HOME/modweave on Linux, ~/Library/Application Support/modweave on macOS,
// %APPDATA%\modweave on Windows), falling back to ./config.cue. The file is validated
// against the embedded #Config schema before it is merged into Viper, and every key can
// be overridden through MODWEAVE_* environment variables (e.g. MODWEAVE_SAVE_MODE).
package config
