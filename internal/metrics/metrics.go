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

// Package metrics is the ambient Prometheus exposition surface (SPEC_FULL.md
// §4.7, additive — it replaces no JSON endpoint of spec.md). It counts
// requests and responses per route and renders the registry in the
// Prometheus text exposition format for the engine's native handler to
// serve directly, without pulling net/http's handler model into the raw
// socket engine.
package metrics

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry wraps a private prometheus.Registry so this process's exposition
// never picks up the default global collectors.
type Registry struct {
	reg *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	responseBytes  *prometheus.CounterVec
	cacheHitsTotal prometheus.Counter
}

// New builds a Registry with the server's fixed metric set registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniweb",
			Name:      "requests_total",
			Help:      "Total requests handled, by route and status class.",
		}, []string{"route", "status"}),
		responseBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniweb",
			Name:      "response_bytes_total",
			Help:      "Total response bytes written, by route.",
		}, []string{"route"}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "miniweb",
			Name:      "static_cache_hits_total",
			Help:      "Total static file cache hits.",
		}),
	}

	reg.MustRegister(r.requestsTotal, r.responseBytes, r.cacheHitsTotal)
	return r
}

// ObserveRequest records one completed request for route at the given HTTP
// status, and the body byte count written.
func (r *Registry) ObserveRequest(route string, status int, bodyBytes int) {
	r.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	r.responseBytes.WithLabelValues(route).Add(float64(bodyBytes))
}

// ObserveCacheHit increments the static file cache hit counter.
func (r *Registry) ObserveCacheHit() {
	r.cacheHitsTotal.Inc()
}

// Gather renders every registered metric family in the Prometheus text
// exposition format.
func (r *Registry) Gather() ([]byte, error) {
	mfs, err := r.reg.Gather()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
