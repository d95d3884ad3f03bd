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
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/probe"
	"github.com/flavioferretti/miniweb-sub000/internal/sampler"
)

type networkingPayload struct {
	Timestamp  time.Time               `json:"timestamp"`
	Routes     []probe.Route           `json:"routes"`
	DNS        probe.DNSConfig         `json:"dns"`
	Interfaces []probe.Interface       `json:"interfaces"`
	History    []sampler.NetworkSample `json:"history"`
}

// NewNetworkingHandler builds the GET /api/networking handler. The latest
// sample comes from the ring; NetworkSampler.Latest performs a synchronous
// collection when the ring is still empty, per spec.md §4.7.
func NewNetworkingHandler(d *Deps) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		latest := d.Network.Latest(d.Ctx)

		payload := networkingPayload{
			Timestamp:  latest.Timestamp,
			Routes:     latest.Routes,
			DNS:        latest.DNS,
			Interfaces: latest.Interfaces,
			History:    d.Network.Last(d.Ctx, historyLength),
		}

		writeJSON(resp, 200, payload)
	}
}
