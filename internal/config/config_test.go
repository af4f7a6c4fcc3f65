// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/modweave/modweave/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func load(t *testing.T, opts LoadOptions) (*Config, error) {
	t.Helper()
	return NewProvider().Load(t.Context(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.ReplaceNonASCIIOnImport {
		t.Error("expected ReplaceNonASCIIOnImport to be false by default")
	}
	if cfg.ModDirectory != "" {
		t.Errorf("expected empty default mod directory, got %q", cfg.ModDirectory)
	}
	if cfg.Save.Mode != SaveModeImmediate {
		t.Errorf("expected default save mode immediate, got %s", cfg.Save.Mode)
	}
	if cfg.Save.Delay != DefaultSaveDelay {
		t.Errorf("expected default save delay %s, got %s", DefaultSaveDelay, cfg.Save.Delay)
	}
	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
	if cfg.Log.Level != LogLevelInfo {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty for defaults", cfg.Source)
	}
	want := DefaultConfig()
	if cfg.Save != want.Save || cfg.Log != want.Log || cfg.UI != want.UI {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
replace_non_ascii_on_import: true
mod_directory: "penumbra"
save: {
	mode:  "queued"
	delay: "1m30s"
}
log: level: "debug"
`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: dir, WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if !cfg.ReplaceNonASCIIOnImport {
		t.Error("ReplaceNonASCIIOnImport should be true")
	}
	if cfg.Save.Mode != SaveModeQueued || cfg.Save.Delay != 90*time.Second {
		t.Errorf("Save = %+v, want queued/1m30s", cfg.Save)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	// Unset keys keep their defaults.
	if cfg.UI.Verbose {
		t.Error("UI.Verbose should keep its default")
	}

	modDir, err := cfg.ResolveModDirectory()
	if err != nil {
		t.Fatalf("ResolveModDirectory() returned error: %v", err)
	}
	if want := filepath.Join(dir, "penumbra"); modDir != want {
		t.Errorf("ResolveModDirectory() = %s, want %s", modDir, want)
	}
}

func TestLoad_WorkDirFallback(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	path := writeConfig(t, work, `ui: verbose: true`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: work})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Source != path || !cfg.UI.Verbose {
		t.Errorf("expected config from work dir, got Source=%q Verbose=%v", cfg.Source, cfg.UI.Verbose)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := load(t, LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
	}
	if !ae.HasSuggestions() {
		t.Error("expected suggestions")
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown save mode", `save: mode: "later"`},
		{"malformed delay", `save: delay: "soon"`},
		{"unknown log level", `log: level: "loud"`},
		{"unknown key", `theme: "dark"`},
		{"wrong type", `ui: verbose: "yes"`},
		{"empty mod directory", `mod_directory: ""`},
		{"syntax error", `save: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := load(t, LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatalf("Load() should reject %q", tt.content)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Resource != path {
				t.Errorf("expected actionable error for %s, got %v", path, err)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MODWEAVE_SAVE_MODE", "queued")
	t.Setenv("MODWEAVE_SAVE_DELAY", "2s")

	dir := t.TempDir()
	writeConfig(t, dir, `save: mode: "immediate"`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Save.Mode != SaveModeQueued || cfg.Save.Delay != 2*time.Second {
		t.Errorf("Save = %+v, want env override queued/2s", cfg.Save)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("MODWEAVE_LOG_LEVEL", "loud")

	_, err := load(t, LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidConfig wrapping ErrInvalidLogLevel, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ReplaceNonASCIIOnImport = true
	cfg.ModDirectory = "/srv/mods"
	cfg.Save = SaveConfig{Mode: SaveModeQueued, Delay: 1500 * time.Millisecond}
	cfg.UI.Verbose = true
	cfg.Log.Level = LogLevelWarn

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := load(t, LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() returned error: %v\n%s", err, GenerateCUE(cfg))
	}
	loaded.Source = ""
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	out := GenerateCUE(DefaultConfig())
	for _, want := range []string{
		"replace_non_ascii_on_import: false",
		`mode:  "immediate"`,
		`delay: "500ms"`,
		`level: "info"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "mod_directory") {
		t.Error("GenerateCUE() should omit an empty mod_directory")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %s", path)
	}

	// An existing file is left alone.
	if err := os.WriteFile(path, []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("second CreateDefaultConfig() returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `ui: verbose: true` {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestResolveModDirectory(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := DefaultConfig().ResolveModDirectory()
	if err != nil {
		t.Fatalf("ResolveModDirectory() returned error: %v", err)
	}
	if want := filepath.Join(dir, ModsDirName); got != want {
		t.Errorf("ResolveModDirectory() = %s, want %s", got, want)
	}

	abs := filepath.Join(dir, "elsewhere")
	cfg := &Config{ModDirectory: abs, Source: "/ignored/config.cue"}
	if got, _ := cfg.ResolveModDirectory(); got != abs {
		t.Errorf("absolute ResolveModDirectory() = %s, want %s", got, abs)
	}
}
