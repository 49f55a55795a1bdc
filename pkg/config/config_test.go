package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Compiler.IterationLimit != 100 {
		t.Errorf("Expected default iteration_limit to be 100, got %d", cfg.Compiler.IterationLimit)
	}
	if cfg.Compiler.MaxExpandDepth != 100 {
		t.Errorf("Expected default max_expand_depth to be 100, got %d", cfg.Compiler.MaxExpandDepth)
	}
	if cfg.SourceMap.Format != FormatSeparate {
		t.Errorf("Expected default sourcemap format to be 'separate', got %q", cfg.SourceMap.Format)
	}
	if cfg.Import.RemoteFanout != 4 {
		t.Errorf("Expected default remote_fanout to be 4, got %d", cfg.Import.RemoteFanout)
	}
}

func TestSourceMapFormatValidation(t *testing.T) {
	tests := []struct {
		format SourceMapFormat
		valid  bool
	}{
		{FormatInline, true},
		{FormatSeparate, true},
		{FormatBoth, true},
		{FormatNone, true},
		{SourceMapFormat("invalid"), false},
		{SourceMapFormat(""), false},
	}

	for _, tt := range tests {
		if got := tt.format.IsValid(); got != tt.valid {
			t.Errorf("SourceMapFormat(%q).IsValid() = %v, want %v", tt.format, got, tt.valid)
		}
	}
}

func TestValidateRejectsNonPositiveIterationLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compiler.IterationLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a zero iteration_limit")
	}
}

func TestValidateRejectsUnknownSourceMapFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceMap.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unrecognized sourcemap format")
	}
}

func TestLoadReturnsDefaultsWhenNoConfigFilesExist(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", filepath.Join(dir, "no-such-home"))

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.Compiler.IterationLimit != 100 {
		t.Errorf("expected default iteration_limit, got %d", cfg.Compiler.IterationLimit)
	}
}

func TestLoadAppliesProjectConfigOverDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", filepath.Join(dir, "no-such-home"))

	toml := "[compiler]\niteration_limit = 50\n"
	if err := os.WriteFile(filepath.Join(dir, "hql.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.Compiler.IterationLimit != 50 {
		t.Errorf("expected project config to override iteration_limit to 50, got %d", cfg.Compiler.IterationLimit)
	}
}

func TestLoadAppliesCLIOverridesOverProjectConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", filepath.Join(dir, "no-such-home"))

	toml := "[compiler]\niteration_limit = 50\n"
	if err := os.WriteFile(filepath.Join(dir, "hql.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(&Config{Compiler: CompilerConfig{IterationLimit: 25}})
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.Compiler.IterationLimit != 25 {
		t.Errorf("expected CLI override to win with 25, got %d", cfg.Compiler.IterationLimit)
	}
}
