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

// Package router is the Router (R): a bounded static (method, path) table,
// four hand-named GET-only dynamic prefix rules, and a declarative view
// route table, per spec.md §4.2.
package router

import (
	"errors"
	"strings"

	"github.com/flavioferretti/miniweb-sub000/internal/engine"
)

// maxStaticRoutes is the static table's cap (spec.md §4.2: "bounded static
// table (cap 32)").
const maxStaticRoutes = 32

// ErrTableFull is returned by Register when the static table is at capacity.
var ErrTableFull = errors.New("router: static route table is full")

type staticRoute struct {
	method  string
	path    string
	handler engine.Handler
}

// ViewRoute is one row of the declarative view table (spec.md §4.2): method,
// path, title, and the templates composing the page.
type ViewRoute struct {
	Method        string
	Path          string
	Title         string
	PageTemplate  string
	ExtraHeadTmpl string
	ExtraJSTmpl   string
}

// Router holds the static table, the view table, and the handlers behind the
// four dynamic GET prefix rules.
type Router struct {
	routes     [maxStaticRoutes]staticRoute
	routeCount int

	views []ViewRoute

	manRender   engine.Handler
	manAPI      engine.Handler
	packagesAPI engine.Handler
	staticFiles engine.Handler

	viewHandler ViewHandler
}

// ViewHandler is the single generic handler every view-table row is
// registered against (spec.md §4.2: "a single generic view handler that
// resolves the row via find_view and emits the composed template").
type ViewHandler func(req *engine.Request, resp *engine.Response, route ViewRoute)

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Register appends (method, path, handler) to the static table. It is an
// O(1) append, per spec.md §4.2; it fails once the table reaches its cap.
func (r *Router) Register(method, path string, handler engine.Handler) error {
	if r.routeCount >= maxStaticRoutes {
		return ErrTableFull
	}
	r.routes[r.routeCount] = staticRoute{method: method, path: path, handler: handler}
	r.routeCount++
	return nil
}

// RegisterView appends a row to the declarative view table. Unlike the
// static table it is unbounded — spec.md only bounds the handler table.
func (r *Router) RegisterView(route ViewRoute) {
	r.views = append(r.views, route)
}

// SetManRenderHandler wires the handler behind `/man/{area}/{section}/{page}[.{fmt}]`.
func (r *Router) SetManRenderHandler(h engine.Handler) { r.manRender = h }

// SetManAPIHandler wires the handler behind `/api/man…`.
func (r *Router) SetManAPIHandler(h engine.Handler) { r.manAPI = h }

// SetPackagesAPIHandler wires the handler behind `/api/packages…`.
func (r *Router) SetPackagesAPIHandler(h engine.Handler) { r.packagesAPI = h }

// SetStaticFilesHandler wires the handler behind `/static/…`.
func (r *Router) SetStaticFilesHandler(h engine.Handler) { r.staticFiles = h }

// SetViewHandler wires the one generic handler behind every view-table row.
func (r *Router) SetViewHandler(h ViewHandler) { r.viewHandler = h }

// Match resolves (method, path) to a handler: first an exact scan of the
// static table, then — for GET only — the four dynamic prefix rules, per
// spec.md §4.2.
func (r *Router) Match(method, path string) (engine.Handler, bool) {
	for i := 0; i < r.routeCount; i++ {
		if r.routes[i].method == method && r.routes[i].path == path {
			return r.routes[i].handler, true
		}
	}

	if method != "GET" {
		return nil, false
	}

	if rest, ok := strings.CutPrefix(path, "/man/"); ok {
		if r.manRender != nil && strings.Count(rest, "/") >= 2 {
			return r.manRender, true
		}
		return nil, false
	}
	if strings.HasPrefix(path, "/api/man") && r.manAPI != nil {
		return r.manAPI, true
	}
	if strings.HasPrefix(path, "/api/packages") && r.packagesAPI != nil {
		return r.packagesAPI, true
	}
	if strings.HasPrefix(path, "/static/") && r.staticFiles != nil {
		return r.staticFiles, true
	}

	return nil, false
}

// FindView resolves (method, path) to its view-table row via an exact scan,
// per spec.md §4.2.
func (r *Router) FindView(method, path string) (ViewRoute, bool) {
	for _, v := range r.views {
		if v.Method == method && v.Path == path {
			return v, true
		}
	}
	return ViewRoute{}, false
}

// Dispatch is an engine.Handler that resolves req via Match, falls back to
// FindView plus the generic view handler, and finally notFound — spec.md
// §4.2's full resolution order.
func (r *Router) Dispatch(notFound engine.Handler) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		if h, ok := r.Match(req.Method, req.Path); ok {
			h(req, resp)
			return
		}
		if v, ok := r.FindView(req.Method, req.Path); ok && r.viewHandler != nil {
			r.viewHandler(req, resp, v)
			return
		}
		notFound(req, resp)
	}
}
