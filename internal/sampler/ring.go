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

// Package sampler is the Samplers component (S_m, S_n): one background task
// per domain, each pushing one sample per second into a fixed-size ring
// buffer sized to a 1 MB byte budget (spec.md §4.6).
package sampler

import "sync"

const sampleByteBudget = 1 << 20 // 1 MB

// ring is a fixed-capacity, single-mutex circular buffer of T. Count
// saturates at capacity; push never grows the backing array.
type ring[T any] struct {
	mu   sync.Mutex
	buf  []T
	head int
	n    int
}

// newRing builds a ring holding at most capacity elements; capacity is
// floored at 1 so a degenerate byte-budget computation never yields a
// useless zero-length buffer.
func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

// push appends sample, advancing head modulo capacity. A single critical
// section, per spec.md §4.6.
func (r *ring[T]) push(sample T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.head] = sample
	r.head = (r.head + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// last returns the most recent min(n, count) samples in chronological
// order (oldest first).
func (r *ring[T]) last(n int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.n {
		n = r.n
	}
	if n <= 0 {
		return nil
	}

	out := make([]T, n)
	size := len(r.buf)
	start := (r.head - n + size) % size
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%size]
	}
	return out
}
