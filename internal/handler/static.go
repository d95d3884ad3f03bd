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

package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flavioferretti/miniweb-sub000/internal/apperror"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/staticcache"
)

// mimeByExt is the fixed extension→content-type table of spec.md §4.7.
var mimeByExt = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".ico":  "image/x-icon",
	".pdf":  "application/pdf",
	".ps":   "application/postscript",
	".md":   "text/markdown",
	".txt":  "text/plain",
}

func mimeType(name string) string {
	if ct, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// NewStaticHandler builds the GET /static/… handler: it strips the prefix,
// rejects traversal, resolves under dir, and serves through cache when the
// request path exists on disk, per spec.md §4.7.
func NewStaticHandler(d *Deps, dir string) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		rel := strings.TrimPrefix(req.Path, "/static/")
		serveStaticFile(d, dir, rel, resp)
	}
}

// NewFaviconHandler builds the favicon handler: a fixed path under the
// static directory, served with an explicit MIME override (spec.md §4.7).
func NewFaviconHandler(d *Deps, dir string) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		serveStaticFile(d, dir, "assets/favicon.svg", resp)
		if resp.Status == 200 {
			resp.ContentType = "image/svg+xml"
		}
	}
}

func serveStaticFile(d *Deps, dir, rel string, resp *engine.Response) {
	if strings.Contains(rel, "..") || strings.Contains(rel, "//") {
		writeHTMLError(resp, apperror.CodeForbidden, "")
		return
	}

	full := filepath.Join(dir, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		writeHTMLError(resp, apperror.CodeNotFound, "")
		return
	}

	stat := staticcache.Stat{ModTime: info.ModTime(), Size: info.Size()}

	if cached, ok := d.Cache.Lookup(full, stat); ok {
		if d.Prom != nil {
			d.Prom.ObserveCacheHit()
		}
		resp.Status = 200
		resp.ContentType = mimeType(full)
		resp.Body = cached
		resp.OwnsBody = false
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		writeHTMLError(resp, apperror.CodeInternal, "")
		return
	}

	d.Cache.Store(full, stat, data)

	resp.Status = 200
	resp.ContentType = mimeType(full)
	resp.Body = data
	resp.OwnsBody = true
}
