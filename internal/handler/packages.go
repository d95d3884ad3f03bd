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
	"net/url"
	"strings"
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/apperror"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/procexec"
)

const pkgInfoTimeout = 10 * time.Second

// isValidPkgPath reports whether s is an absolute path with no traversal
// segment, the alternative input shape spec.md §4.7 allows alongside the
// plain package-name alphabet ("validates the package name alphabet or
// absolute-path prefix").
func isValidPkgPath(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.Contains(s, "..") && !strings.Contains(s, "//")
}

// NewPackagesAPIHandler builds the GET /api/packages/{search|info|which|files|list}
// handler. Every action shells out to pkg_info via the Command Executor with
// pkgsrc's real flags (-Ia search, -v info, -W which, -L files).
func NewPackagesAPIHandler(d *Deps) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		action := strings.TrimPrefix(req.Path, "/api/packages/")
		vals, _ := url.ParseQuery(req.Query)

		switch action {
		case "search":
			pkgRunListing(d, resp, "query", vals.Get("q"), procexec.IsValidArg, []string{"-Ia"}, "packages")
		case "info":
			pkgRunListing(d, resp, "package", vals.Get("name"), procexec.IsValidArg, []string{"-v"}, "info")
		case "which":
			pkgRunListing(d, resp, "path", vals.Get("path"), isValidPkgPath, []string{"-W"}, "packages")
		case "files":
			pkgRunListing(d, resp, "package", vals.Get("name"), procexec.IsValidArg, []string{"-L"}, "files")
		case "list":
			out, err := procexec.Run(d.Ctx, d.Config.PkgInfoPath, nil, 1<<20, pkgInfoTimeout)
			if err != nil {
				writeJSONError(resp, apperror.CodeInternal, "pkg_info: "+err.Error())
				return
			}
			writeJSON(resp, 200, map[string]any{"packages": splitNonEmptyLines(string(out))})
		default:
			writeJSONError(resp, apperror.CodeParse, "unknown package action")
		}
	}
}

// pkgRunListing validates arg, invokes pkg_info with flags+arg appended, and
// writes {inputKey: arg, outputKey: lines} on success.
func pkgRunListing(d *Deps, resp *engine.Response, inputKey, arg string, valid func(string) bool, flags []string, outputKey string) {
	if !valid(arg) {
		writeJSONError(resp, apperror.CodeBadArgument, "invalid "+inputKey)
		return
	}

	argv := append(append([]string{}, flags...), arg)
	out, err := procexec.Run(d.Ctx, d.Config.PkgInfoPath, argv, 1<<20, pkgInfoTimeout)
	if err != nil {
		writeJSONError(resp, apperror.CodeInternal, "pkg_info: "+err.Error())
		return
	}

	writeJSON(resp, 200, map[string]any{
		inputKey:  arg,
		outputKey: splitNonEmptyLines(string(out)),
	})
}
