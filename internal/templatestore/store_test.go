package templatestore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewLoadsRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.html", "<html>{{title}}{{page_content}}{{extra_head}}{{extra_js}}</html>")
	writeFile(t, dir, "home.html", "<p>home</p>")

	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "ignored.html", "nope")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, ok := s.Get("ignored.html"); ok {
		t.Fatalf("subdirectory files must not be loaded")
	}

	if _, ok := s.Get("home.html"); !ok {
		t.Fatalf("expected home.html to be loaded")
	}
}

func TestNewFailsWithNoTemplates(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir); err == nil {
		t.Fatalf("expected error for empty templates dir")
	}
}

func TestRenderOrderAndMissingFragments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.html", "A{{title}}B{{page_content}}C{{extra_head}}D{{extra_js}}E")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := s.Render(View{Title: "T", PageBody: "P"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := "ATBPCDE"
	if out != want {
		t.Fatalf("Render() = %q, want %q", out, want)
	}
}

func TestRenderIsNotRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.html", "{{title}}{{page_content}}{{extra_head}}{{extra_js}}")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := s.Render(View{Title: "{{page_content}}", PageBody: "P"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if out != "{{page_content}}P" {
		t.Fatalf("placeholders in substituted content must be emitted verbatim, got %q", out)
	}
}

func TestReloadSwapsAtomically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.html", "v1")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v, _ := s.Get("base.html")
	if v != "v1" {
		t.Fatalf("expected v1, got %q", v)
	}

	writeFile(t, dir, "base.html", "v2")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	v, _ = s.Get("base.html")
	if v != "v2" {
		t.Fatalf("expected v2 after reload, got %q", v)
	}
}
