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

// Package handler wires the Platform Probe, Samplers, Command Executor,
// Template Store, Static File Cache, and Prometheus registry into the set of
// engine.Handler functions spec.md §4.7 describes. Each constructor closes
// over a *Deps and returns a ready-to-register engine.Handler.
package handler

import (
	"context"
	"encoding/json"

	"github.com/flavioferretti/miniweb-sub000/internal/apperror"
	"github.com/flavioferretti/miniweb-sub000/internal/config"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/metrics"
	"github.com/flavioferretti/miniweb-sub000/internal/sampler"
	"github.com/flavioferretti/miniweb-sub000/internal/staticcache"
	"github.com/flavioferretti/miniweb-sub000/internal/templatestore"
)

// Deps bundles every component a Handlers constructor closes over. Ctx is
// the process-lifetime context passed to sampler Ensure calls — it outlives
// any single request and is cancelled only at shutdown.
type Deps struct {
	Ctx       context.Context
	Config    config.Configuration
	Metric    *sampler.MetricSampler
	Network   *sampler.NetworkSampler
	Cache     *staticcache.Cache
	Templates *templatestore.Store
	Prom      *metrics.Registry
}

const historyLength = 120

// writeJSON marshals v, sets the mandatory JSON response headers (content
// type, CORS wildcard — spec.md §4.7), and assigns resp.Body. A marshal
// failure degrades to a 500 with a minimal JSON error body rather than
// propagating an encoding error to the transport layer.
func writeJSON(resp *engine.Response, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		resp.Status = 500
		resp.ContentType = "application/json"
		resp.Body = []byte(`{"error":"internal encoding failure"}`)
		resp.ExtraHeader = append(resp.ExtraHeader, "Access-Control-Allow-Origin: *\r\n"...)
		return
	}

	resp.Status = status
	resp.ContentType = "application/json"
	resp.Body = body
	resp.OwnsBody = true
	resp.ExtraHeader = append(resp.ExtraHeader, "Access-Control-Allow-Origin: *\r\n"...)
}

// writeJSONError writes {"error": msg} at code's translated status, following
// the same header contract as writeJSON. Handlers pass one of the seven
// spec.md §7 apperror.Code constants rather than a literal status, so the
// code→status translation lives in one place (apperror.Code.Status).
func writeJSONError(resp *engine.Response, code apperror.Code, msg string) {
	status, _ := code.Status()
	writeJSON(resp, status, map[string]string{"error": msg})
}

// writeHTMLError renders a minimal HTML error body, for the non-JSON
// surfaces (static files, man-page render) per spec.md §7's "Forbidden ...
// text/html" and "NotFound ... text/html". message defaults to code's reason
// phrase when empty.
func writeHTMLError(resp *engine.Response, code apperror.Code, message string) {
	status, reason := code.Status()
	if message == "" {
		message = reason
	}
	resp.Status = status
	resp.ContentType = "text/html"
	resp.Body = []byte("<html><body><h1>" + message + "</h1></body></html>")
	resp.OwnsBody = true
}
