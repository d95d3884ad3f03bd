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
	"strings"
	"testing"

	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/handler"
	"github.com/flavioferretti/miniweb-sub000/internal/router"
)

func TestViewHandlerComposesShell(t *testing.T) {
	deps, _ := newTestDeps(t, map[string]string{
		"home.html": "<h1>hello</h1>",
	})

	h := handler.NewViewHandler(deps)

	resp := &engine.Response{}
	h(&engine.Request{Method: "GET", Path: "/"}, resp, router.ViewRoute{
		Title:        "MiniWeb - Dashboard",
		PageTemplate: "home.html",
	})

	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	body := string(resp.Body)
	if !strings.Contains(body, "MiniWeb - Dashboard") {
		t.Fatalf("expected title in body, got %q", body)
	}
	if !strings.Contains(body, "<h1>hello</h1>") {
		t.Fatalf("expected page content in body, got %q", body)
	}
}

func TestViewHandlerMissingTemplateIs500(t *testing.T) {
	deps, _ := newTestDeps(t, nil)

	h := handler.NewViewHandler(deps)

	resp := &engine.Response{}
	h(&engine.Request{Method: "GET", Path: "/missing"}, resp, router.ViewRoute{
		Title:        "Missing",
		PageTemplate: "does-not-exist.html",
	})

	if resp.Status != 500 {
		t.Fatalf("expected 500 for a missing page template, got %d", resp.Status)
	}
}
