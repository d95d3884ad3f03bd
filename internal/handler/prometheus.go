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
)

// NewPrometheusHandler builds the GET /metrics handler exposing the ambient
// request/cache counters in the Prometheus text exposition format. It is
// wired onto the static route table alongside the JSON API routes, not onto
// the declarative view table — it has no page shell.
func NewPrometheusHandler(d *Deps) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		body, err := d.Prom.Gather()
		if err != nil {
			writeJSONError(resp, apperror.CodeInternal, "gathering metrics: "+err.Error())
			return
		}

		resp.Status = 200
		resp.ContentType = "text/plain; version=0.0.4; charset=utf-8"
		resp.Body = body
		resp.OwnsBody = true
	}
}
