package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration should validate: %v", err)
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	cfg := Default()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for out-of-range port")
	}
}

func TestParseFileKnownAndUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "miniweb.conf")

	content := "# comment\n\nport 9090\nbind 127.0.0.1\nthreads 8\nverbose yes\nbogus_key value\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	unknown, err := ParseFile(path, &cfg)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if cfg.Port != 9090 || cfg.Bind != "127.0.0.1" || cfg.Workers != 8 || !cfg.Verbose {
		t.Fatalf("unexpected config after parse: %+v", cfg)
	}

	if len(unknown) != 1 || unknown[0] != "bogus_key" {
		t.Fatalf("expected one unknown key 'bogus_key', got %v", unknown)
	}
}

func TestResolvePathPrefersExplicit(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.conf")
	if err := os.WriteFile(explicit, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := ResolvePath(explicit, "miniweb"); got != explicit {
		t.Fatalf("ResolvePath should prefer explicit path, got %q", got)
	}
}

func TestFlagsApplyOverridesOnlySetFields(t *testing.T) {
	cfg := Default()
	port := 1234
	flags := Flags{Port: &port}
	flags.Apply(&cfg)

	if cfg.Port != 1234 {
		t.Fatalf("expected port override to apply")
	}
	if cfg.Bind != Default().Bind {
		t.Fatalf("unset flags should not change other fields")
	}
}
