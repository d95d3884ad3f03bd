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

package staticcache_test

import (
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/staticcache"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache", func() {
	var (
		c    *staticcache.Cache
		stat staticcache.Stat
	)

	BeforeEach(func() {
		c = staticcache.New(staticcache.Options{
			MaxEntries:      2,
			MaxAge:          time.Hour,
			MaxBytes:        1024,
			TokensPerSecond: 1000,
		})
		stat = staticcache.Stat{ModTime: time.Now(), Size: 4}
	})

	Describe("admission", func() {
		It("does not cache on the first observation", func() {
			c.Store("/a", stat, []byte("data"))
			_, ok := c.Lookup("/a", stat)
			Expect(ok).To(BeFalse())
		})

		It("does not promote after a single request's Lookup-then-Store pair", func() {
			_, ok := c.Lookup("/a", stat) // request 1: miss, admission hit #1
			Expect(ok).To(BeFalse())
			c.Store("/a", stat, []byte("data")) // hits==1, not yet admitted

			_, ok = c.Lookup("/a", stat)
			Expect(ok).To(BeFalse())
		})

		It("promotes to the main table on the second distinct request", func() {
			_, _ = c.Lookup("/a", stat)         // request 1: miss, admission hit #1
			c.Store("/a", stat, []byte("data")) // hits==1, not yet admitted

			_, ok := c.Lookup("/a", stat)       // request 2: miss, admission hit #2
			Expect(ok).To(BeFalse())
			c.Store("/a", stat, []byte("data")) // hits==2 -> promoted

			got, ok := c.Lookup("/a", stat)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal([]byte("data")))
		})
	})

	Describe("validity", func() {
		It("treats a mtime mismatch as a miss", func() {
			_, _ = c.Lookup("/a", stat)
			c.Store("/a", stat, []byte("data"))
			_, _ = c.Lookup("/a", stat)
			c.Store("/a", stat, []byte("data")) // two distinct requests -> promoted

			stale := stat
			stale.ModTime = stat.ModTime.Add(time.Second)
			_, ok := c.Lookup("/a", stale)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("bounds", func() {
		It("bypasses files larger than MaxBytes", func() {
			big := staticcache.Stat{ModTime: time.Now(), Size: 99999}
			_, _ = c.Lookup("/big", big)
			c.Store("/big", big, make([]byte, 99999))
			Expect(c.Len()).To(Equal(0))
		})
	})

	Describe("eviction", func() {
		It("replaces the oldest entry when the main table is full", func() {
			paths := []string{"/a", "/b", "/c"}
			for _, p := range paths {
				_, _ = c.Lookup(p, stat) // request 1: admission hit #1
				c.Store(p, stat, []byte("data"))
				_, _ = c.Lookup(p, stat) // request 2: admission hit #2 -> promoted
				c.Store(p, stat, []byte("data"))
				time.Sleep(2 * time.Millisecond)
			}
			Expect(c.Len()).To(Equal(2))

			_, ok := c.Lookup("/a", stat)
			Expect(ok).To(BeFalse(), "oldest entry should have been evicted")
		})
	})

	Describe("rate limiting", func() {
		It("defers insertion once tokens are exhausted", func() {
			limited := staticcache.New(staticcache.Options{
				MaxEntries:      10,
				MaxAge:          time.Hour,
				MaxBytes:        1024,
				TokensPerSecond: 1,
			})

			_, _ = limited.Lookup("/a", stat)
			limited.Store("/a", stat, []byte("data"))
			_, _ = limited.Lookup("/a", stat)
			limited.Store("/a", stat, []byte("data")) // admitted, consumes the only token

			_, _ = limited.Lookup("/b", stat)
			limited.Store("/b", stat, []byte("data"))
			_, _ = limited.Lookup("/b", stat)
			limited.Store("/b", stat, []byte("data")) // admitted, but no tokens left

			Expect(limited.Len()).To(BeNumerically("<=", 1))
		})
	})
})
