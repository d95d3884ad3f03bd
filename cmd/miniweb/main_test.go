/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flavioferretti/miniweb-sub000/internal/config"
	"github.com/flavioferretti/miniweb-sub000/internal/handler"
	"github.com/flavioferretti/miniweb-sub000/internal/metrics"
	"github.com/flavioferretti/miniweb-sub000/internal/sampler"
	"github.com/flavioferretti/miniweb-sub000/internal/staticcache"
	"github.com/flavioferretti/miniweb-sub000/internal/templatestore"
)

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	prevWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer func() { _ = os.Chdir(prevWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.Flags().Set("port", "9090"); err != nil {
		t.Fatalf("Set port: %v", err)
	}
	if err := cmd.Flags().Set("verbose", "true"); err != nil {
		t.Fatalf("Set verbose: %v", err)
	}

	cfg, _, err := loadConfig(cmd, &flags{port: 9090, verbose: true})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Port != 9090 {
		t.Fatalf("expected the port flag override to apply before validation, got %d", cfg.Port)
	}
	if !cfg.Verbose {
		t.Fatalf("expected the verbose flag override to apply")
	}
}

func TestLoadConfigHonorsExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "custom.conf")
	if err := os.WriteFile(confPath, []byte("port 7070\nbind 127.0.0.1\n"), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.Flags().Set("config", confPath); err != nil {
		t.Fatalf("Set config: %v", err)
	}

	cfg, unknown, err := loadConfig(cmd, &flags{confPath: confPath})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("expected no unknown directives, got %v", unknown)
	}
	if cfg.Port != 7070 || cfg.Bind != "127.0.0.1" {
		t.Fatalf("expected file directives to apply, got %+v", cfg)
	}
}

func TestBuildRouterRegistersViewAndStaticRoutes(t *testing.T) {
	tdir := t.TempDir()
	for _, name := range []string{"base.html", "dashboard.html", "man.html", "packages.html", "networking.html"} {
		if err := os.WriteFile(filepath.Join(tdir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	store, err := templatestore.New(tdir)
	if err != nil {
		t.Fatalf("templatestore.New: %v", err)
	}

	cfg := config.Default()
	cfg.StaticDir = t.TempDir()

	d := &handler.Deps{
		Ctx:       context.Background(),
		Config:    cfg,
		Metric:    sampler.NewMetricSampler(),
		Network:   sampler.NewNetworkSampler(),
		Cache:     staticcache.New(staticcache.DefaultOptions()),
		Templates: store,
		Prom:      metrics.New(),
	}

	r := buildRouter(d, cfg)

	if _, ok := r.FindView("GET", "/"); !ok {
		t.Fatalf("expected the dashboard view route to be registered")
	}
	if _, ok := r.Match("GET", "/api/metrics"); !ok {
		t.Fatalf("expected /api/metrics to be registered on the static table")
	}
	if _, ok := r.Match("GET", "/static/anything"); !ok {
		t.Fatalf("expected the static files prefix rule to be wired")
	}
}
