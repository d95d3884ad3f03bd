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

package handler_test

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

// newTestDeps builds a *handler.Deps wired to a scratch templates directory
// (with a minimal base.html and any extra named templates) and a scratch
// static directory, mirroring the shape cmd/miniweb assembles at startup.
func newTestDeps(t *testing.T, extraTemplates map[string]string) (*handler.Deps, string) {
	t.Helper()

	tdir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tdir, "base.html"), []byte(
		"<html><head><title>{{title}}</title>{{extra_head}}</head>"+
			"<body>{{page_content}}{{extra_js}}</body></html>"), 0o644); err != nil {
		t.Fatalf("writing base.html: %v", err)
	}
	for name, body := range extraTemplates {
		if err := os.WriteFile(filepath.Join(tdir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	store, err := templatestore.New(tdir)
	if err != nil {
		t.Fatalf("templatestore.New: %v", err)
	}

	sdir := t.TempDir()

	return &handler.Deps{
		Ctx:       context.Background(),
		Config:    config.Default(),
		Metric:    sampler.NewMetricSampler(),
		Network:   sampler.NewNetworkSampler(),
		Cache:     staticcache.New(staticcache.DefaultOptions()),
		Templates: store,
		Prom:      metrics.New(),
	}, sdir
}
