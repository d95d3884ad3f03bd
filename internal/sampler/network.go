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

package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/probe"
	libtck "github.com/nabbar/golib/runner/ticker"
)

// NetworkSample is one second's snapshot of routes, DNS configuration, and
// interface counters, per spec.md §4.6 ("up to 50 routes ... up to 10
// interface-counter rows").
type NetworkSample struct {
	Timestamp  time.Time         `json:"timestamp"`
	Routes     []probe.Route     `json:"routes"`
	DNS        probe.DNSConfig   `json:"dns"`
	Interfaces []probe.Interface `json:"interfaces"`
}

// networkSampleApproxBytes is a conservative per-sample size estimate used
// only to size the ring (routes/interfaces are slices, so unsafe.Sizeof
// cannot measure their backing storage the way it can for MetricSample).
const networkSampleApproxBytes = 50*96 + 256 + 10*64 + 32

var networkSampleCapacity = sampleByteBudget / networkSampleApproxBytes

// NetworkSampler owns the networking ring buffer and its lazily started
// background ticker.
type NetworkSampler struct {
	ring *ring[NetworkSample]
	once sync.Once
	tick libtck.Ticker
}

// NewNetworkSampler builds a sampler that has not yet started its background
// task.
func NewNetworkSampler() *NetworkSampler {
	s := &NetworkSampler{ring: newRing[NetworkSample](networkSampleCapacity)}
	s.tick = libtck.New(time.Second, func(ctx context.Context, _ *time.Ticker) error {
		s.ring.push(s.collect())
		return nil
	})
	return s
}

// Ensure starts the background ticker exactly once, on first call.
func (s *NetworkSampler) Ensure(ctx context.Context) {
	s.once.Do(func() {
		_ = s.tick.Start(ctx)
	})
}

// collect gathers one networking sample synchronously.
func (s *NetworkSampler) collect() NetworkSample {
	routes, _ := probe.CollectRoutes()
	dns, _ := probe.CollectDNS()
	ifaces, _ := probe.CollectInterfaces()

	return NetworkSample{
		Timestamp:  time.Now(),
		Routes:     routes,
		DNS:        dns,
		Interfaces: ifaces,
	}
}

// Last returns the most recent n samples, starting the background task if
// it has not run yet.
func (s *NetworkSampler) Last(ctx context.Context, n int) []NetworkSample {
	s.Ensure(ctx)
	return s.ring.last(n)
}

// Latest returns the single most recent sample. If the ring is empty (the
// background task has not produced a sample yet), it performs a synchronous
// collection instead, per spec.md §4.7's networking-handler contract.
func (s *NetworkSampler) Latest(ctx context.Context) NetworkSample {
	s.Ensure(ctx)
	last := s.ring.last(1)
	if len(last) == 1 {
		return last[0]
	}
	return s.collect()
}
