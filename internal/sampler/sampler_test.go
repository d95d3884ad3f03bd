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

package sampler_test

import (
	"context"
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/sampler"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MetricSampler", func() {
	It("starts the background task on first access to Last", func() {
		s := sampler.NewMetricSampler()
		time.Sleep(20 * time.Millisecond)
		// no samples should exist yet; Last() triggers the lazy start itself
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Eventually(func() int {
			return len(s.Last(ctx, 120))
		}, time.Second, 50*time.Millisecond).Should(BeNumerically(">=", 1))
	})

	It("caps Last at the requested count", func() {
		s := sampler.NewMetricSampler()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Eventually(func() int {
			return len(s.Last(ctx, 1))
		}, 2*time.Second, 100*time.Millisecond).Should(Equal(1))
	})
})

var _ = Describe("NetworkSampler", func() {
	It("performs a synchronous collection on first Latest call", func() {
		s := sampler.NewNetworkSampler()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		sample := s.Latest(ctx)
		Expect(sample.Timestamp).ToNot(BeZero())
	})
})
