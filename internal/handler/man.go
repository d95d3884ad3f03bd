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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/apperror"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/procexec"
)

// areaDir resolves one of the closed set of manual-page areas spec.md §4.7
// names (system, packages, x11) to its configured base directory; any other
// value is Forbidden.
func areaDir(d *Deps, area string) (string, bool) {
	switch area {
	case "system":
		return d.Config.ManAreaSystem, true
	case "packages":
		return d.Config.ManAreaPackages, true
	case "x11":
		return d.Config.ManAreaX11, true
	default:
		return "", false
	}
}

// NewManAPIHandler builds the GET /api/man… handler covering the root
// sections listing, apropos-style search, per-section file listing, and
// per-page metadata resolution (spec.md §4.7).
func NewManAPIHandler(d *Deps) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		rel := strings.Trim(strings.TrimPrefix(req.Path, "/api/man"), "/")
		if rel == "" {
			writeJSON(resp, 200, map[string]any{"areas": []string{"system", "packages", "x11"}})
			return
		}

		segs := strings.Split(rel, "/")

		if segs[0] == "search" {
			if len(segs) < 2 || segs[1] == "" {
				writeJSONError(resp, apperror.CodeBadArgument, "missing search query")
				return
			}
			manAPISearch(d, segs[1], resp)
			return
		}

		if len(segs) < 2 {
			writeJSONError(resp, apperror.CodeParse, "malformed man API path")
			return
		}

		area, section := segs[0], segs[1]
		dir, ok := areaDir(d, area)
		if !ok {
			writeJSONError(resp, apperror.CodeForbidden, "invalid area")
			return
		}
		if !procexec.IsValidSection(section) {
			writeJSONError(resp, apperror.CodeBadArgument, "invalid section")
			return
		}

		switch len(segs) {
		case 2:
			manAPIListSection(dir, section, resp)
		case 3:
			manAPIPageInfo(d, area, section, segs[2], resp)
		default:
			writeJSONError(resp, apperror.CodeParse, "malformed man API path")
		}
	}
}

func manAPISearch(d *Deps, query string, resp *engine.Response) {
	if !procexec.IsValidArg(query) {
		writeJSONError(resp, apperror.CodeBadArgument, "invalid search query")
		return
	}

	out, err := procexec.Run(d.Ctx, d.Config.AproposPath, []string{query}, 65536, 5*time.Second)
	if err != nil {
		writeJSONError(resp, apperror.CodeInternal, "apropos: "+err.Error())
		return
	}

	lines := splitNonEmptyLines(string(out))
	writeJSON(resp, 200, map[string]any{"query": query, "results": lines})
}

func manAPIListSection(dir, section string, resp *engine.Response) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		writeJSONError(resp, apperror.CodeInternal, "reading area directory: "+err.Error())
		return
	}

	suffix := "." + section
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}

	writeJSON(resp, 200, map[string]any{"section": section, "pages": names})
}

func manAPIPageInfo(d *Deps, area, section, name string, resp *engine.Response) {
	if !procexec.IsValidArg(name) {
		writeJSONError(resp, apperror.CodeBadArgument, "invalid page name")
		return
	}

	path, err := resolveManPath(d, section, name)
	if err != nil {
		writeJSONError(resp, apperror.CodeNotFound, "page not found")
		return
	}

	writeJSON(resp, 200, map[string]any{
		"area":    area,
		"section": section,
		"name":    name,
		"path":    path,
	})
}

// resolveManPath invokes the man-w tool ("man -w") to resolve a manual page
// to its on-disk path without rendering it, per spec.md §4.7.
func resolveManPath(d *Deps, section, name string) (string, error) {
	out, err := procexec.Run(d.Ctx, d.Config.ManWPath, []string{section, name}, 4096, time.Duration(d.Config.MandocTimeoutS)*time.Second)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0]), nil
}

func splitNonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// NewManRenderHandler builds the GET /man/{area}/{section}/{name}[.fmt]
// handler: resolve via man-w, render via mandoc -T<fmt>, per spec.md §4.7.
func NewManRenderHandler(d *Deps) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		rest := strings.TrimPrefix(req.Path, "/man/")
		segs := strings.Split(rest, "/")
		if len(segs) < 3 {
			writeHTMLError(resp, apperror.CodeParse, "")
			return
		}

		area, section, nameAndFmt := segs[0], segs[1], strings.Join(segs[2:], "/")
		if _, ok := areaDir(d, area); !ok {
			writeHTMLError(resp, apperror.CodeForbidden, "")
			return
		}
		if !procexec.IsValidSection(section) {
			writeHTMLError(resp, apperror.CodeParse, "")
			return
		}

		name, format := splitNameFormat(nameAndFmt)
		if !procexec.IsValidArg(name) {
			writeHTMLError(resp, apperror.CodeParse, "")
			return
		}

		path, err := resolveManPath(d, section, name)
		if err != nil {
			writeHTMLError(resp, apperror.CodeNotFound, "")
			return
		}

		mandocFmt := mandocFormat(format)
		out, err := procexec.Run(d.Ctx, d.Config.MandocPath, []string{"-T" + mandocFmt, path}, 1<<20, time.Duration(d.Config.MandocTimeoutS)*time.Second)
		if err != nil {
			writeHTMLError(resp, apperror.CodeInternal, "")
			return
		}

		resp.Status = 200
		resp.ContentType = mandocContentType(mandocFmt)
		resp.Body = out
		resp.OwnsBody = true

		if mandocFmt == "pdf" {
			resp.ExtraHeader = append(resp.ExtraHeader,
				fmt.Sprintf("Content-Disposition: inline; filename=\"%s.pdf\"\r\n", name)...)
		}
	}
}

// splitNameFormat separates "{name}.{fmt}" into (name, fmt); a missing
// extension defaults to html, mandoc's own default renderer.
func splitNameFormat(s string) (name, format string) {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return s, "html"
	}
	return s[:idx], s[idx+1:]
}

// mandocFormat maps a requested format token to the `-T` value mandoc
// accepts, folding the unsupported "markdown" request down to its closest
// mandoc equivalent, ascii, per spec.md §4.7.
func mandocFormat(requested string) string {
	switch strings.ToLower(requested) {
	case "html", "pdf", "ps":
		return strings.ToLower(requested)
	case "markdown", "md":
		return "ascii"
	default:
		return "html"
	}
}

func mandocContentType(format string) string {
	switch format {
	case "pdf":
		return "application/pdf"
	case "ps":
		return "application/postscript"
	case "ascii":
		return "text/plain"
	default:
		return "text/html"
	}
}
