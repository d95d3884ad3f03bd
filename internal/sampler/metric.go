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
	"unsafe"

	"github.com/flavioferretti/miniweb-sub000/internal/probe"
	libtck "github.com/nabbar/golib/runner/ticker"
)

// MetricSample is one second's snapshot of CPU/memory/swap/network
// utilization, per spec.md §4.6.
type MetricSample struct {
	Timestamp  time.Time `json:"timestamp"`
	CPUUsed    float64   `json:"cpu_used_percent"`
	MemUsedMB  float64   `json:"mem_used_mb"`
	MemTotalMB float64   `json:"mem_total_mb"`
	SwapUsedMB float64   `json:"swap_used_mb"`
	NetRxBytes uint64    `json:"net_rx_bytes"`
	NetTxBytes uint64    `json:"net_tx_bytes"`
}

var metricSampleCapacity = sampleByteBudget / int(unsafe.Sizeof(MetricSample{}))

// MetricSampler owns the metrics ring buffer and its once-started background
// ticker. The ticker starts lazily on first access to Last or Ensure, not at
// construction, per spec.md §4.6's "first-use initializer guard".
type MetricSampler struct {
	ring  *ring[MetricSample]
	once  sync.Once
	tick  libtck.Ticker
	start func(ctx context.Context) error
}

// NewMetricSampler builds a sampler that has not yet started its background
// task.
func NewMetricSampler() *MetricSampler {
	s := &MetricSampler{ring: newRing[MetricSample](metricSampleCapacity)}
	s.tick = libtck.New(time.Second, func(ctx context.Context, _ *time.Ticker) error {
		s.collectOnce()
		return nil
	})
	return s
}

// Ensure starts the background ticker exactly once, on first call.
func (s *MetricSampler) Ensure(ctx context.Context) {
	s.once.Do(func() {
		_ = s.tick.Start(ctx)
	})
}

// collectOnce gathers one sample from the platform probe and pushes it.
func (s *MetricSampler) collectOnce() {
	cpuInfo := probe.CollectCPU(0)
	mem, _ := probe.CollectMemory()
	swap, _ := probe.CollectSwap()

	var rx, tx uint64
	if ifaces, err := probe.CollectInterfaces(); err == nil {
		for _, i := range ifaces {
			rx += i.RxBytes
			tx += i.TxBytes
		}
	}

	s.ring.push(MetricSample{
		Timestamp:  time.Now(),
		CPUUsed:    cpuInfo.UsedPercent,
		MemUsedMB:  mem.UsedMB,
		MemTotalMB: mem.TotalMB,
		SwapUsedMB: swap.UsedMB,
		NetRxBytes: rx,
		NetTxBytes: tx,
	})
}

// Last returns the most recent n samples (n is 120 for history endpoints per
// spec.md §4.6), starting the background task if it has not run yet.
func (s *MetricSampler) Last(ctx context.Context, n int) []MetricSample {
	s.Ensure(ctx)
	return s.ring.last(n)
}
