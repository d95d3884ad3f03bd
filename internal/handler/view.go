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
	"github.com/flavioferretti/miniweb-sub000/internal/apperror"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/router"
	"github.com/flavioferretti/miniweb-sub000/internal/templatestore"
)

// NewViewHandler builds the single generic view handler every view-table row
// is dispatched through: it resolves the page-content fragment and the
// optional extra-head/extra-js fragments by name, then composes the shell
// template, per spec.md §4.2 and §4.7. A missing page fragment is a server
// error — the route table names a template that must exist; a missing
// extra-head or extra-js fragment is just an empty string (templatestore's
// own contract).
func NewViewHandler(d *Deps) router.ViewHandler {
	return func(req *engine.Request, resp *engine.Response, route router.ViewRoute) {
		body, ok := d.Templates.Get(route.PageTemplate)
		if !ok {
			writeHTMLError(resp, apperror.CodeInternal, "")
			return
		}

		html, err := d.Templates.Render(templatestore.View{
			Title:     route.Title,
			PageBody:  body,
			ExtraHead: d.Templates.RenderFragment(route.ExtraHeadTmpl),
			ExtraJS:   d.Templates.RenderFragment(route.ExtraJSTmpl),
		})
		if err != nil {
			writeHTMLError(resp, apperror.CodeInternal, "")
			return
		}

		resp.Status = 200
		resp.ContentType = "text/html"
		resp.Body = []byte(html)
		resp.OwnsBody = true
	}
}
