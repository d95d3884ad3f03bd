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

package engine

import "sync"

// responsePoolCap is the hard cap on pooled Response objects (spec.md §4.1:
// "a bounded pool of 256 response records"). sync.Pool has no such cap, so
// the pool here is an explicit free stack instead.
const responsePoolCap = 256

// Response is a pooled, reusable HTTP response builder.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	OwnsBody    bool
	ExtraHeader []byte
}

func (r *Response) reset() {
	r.Status = 0
	r.ContentType = ""
	r.Body = nil
	r.OwnsBody = false
	r.ExtraHeader = r.ExtraHeader[:0]
}

// responsePool is the bounded free stack of Response objects.
type responsePool struct {
	mu    sync.Mutex
	stack []*Response
}

func newResponsePool() *responsePool {
	return &responsePool{stack: make([]*Response, 0, responsePoolCap)}
}

// Acquire pops a Response from the free stack, or allocates a fresh one
// when the stack is empty (the cap bounds retained objects, not concurrent
// ones in flight).
func (p *responsePool) Acquire() *Response {
	p.mu.Lock()
	n := len(p.stack)
	if n == 0 {
		p.mu.Unlock()
		return &Response{ExtraHeader: make([]byte, 0, 256)}
	}
	r := p.stack[n-1]
	p.stack = p.stack[:n-1]
	p.mu.Unlock()
	return r
}

// Release zeroes r and pushes it back onto the free stack, unless the stack
// is already at its cap, in which case r is left for the garbage collector.
func (p *responsePool) Release(r *Response) {
	r.reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.stack) >= responsePoolCap {
		return
	}
	p.stack = append(p.stack, r)
}
