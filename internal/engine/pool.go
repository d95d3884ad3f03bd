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

import (
	"net"
	"sync"
	"time"
)

// conn is one connection slot's state. The slot index IS the file
// descriptor: allocation is O(1) array indexing, per spec.md §4.1.
type conn struct {
	fd         int
	occupied   bool
	generation uint32
	peer       net.Addr
	created    time.Time

	buf   []byte
	nread int
}

// connPool is the fixed-size connection table. One mutex covers every
// operation, per spec.md §5's shared-resource discipline.
type connPool struct {
	mu       sync.Mutex
	slots    []conn
	count    int
	capacity int
	bufSize  int
}

func newConnPool(capacity, bufSize int) *connPool {
	return &connPool{
		slots:    make([]conn, capacity),
		capacity: capacity,
		bufSize:  bufSize,
	}
}

// ErrAtCapacity is returned by Acquire when every slot is occupied.
type errAtCapacity struct{}

func (errAtCapacity) Error() string { return "engine: connection pool at capacity" }

// ErrAtCapacity is the sentinel spec.md §4.1 calls AtCapacity.
var ErrAtCapacity error = errAtCapacity{}

// Acquire allocates the slot for fd. fd must not already be tracked by a
// live slot; callers own that invariant because fd is only ever a freshly
// accept()-ed descriptor.
func (p *connPool) Acquire(fd int, peer net.Addr) (*conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fd < 0 || fd >= p.capacity {
		return nil, errAtCapacity{}
	}
	if p.count >= p.capacity {
		return nil, errAtCapacity{}
	}

	s := &p.slots[fd]
	if s.occupied {
		return nil, errAtCapacity{}
	}

	s.fd = fd
	s.occupied = true
	s.peer = peer
	s.created = time.Now()
	s.nread = 0
	if s.buf == nil {
		s.buf = make([]byte, p.bufSize)
	}
	p.count++

	return s, nil
}

// Release empties the slot and bumps its generation counter, the defense
// against use-after-free via stale readiness-event data (spec.md §3, §5).
func (p *connPool) Release(fd int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fd < 0 || fd >= p.capacity {
		return
	}
	s := &p.slots[fd]
	if !s.occupied {
		return
	}

	s.occupied = false
	s.peer = nil
	s.nread = 0
	s.generation++
	p.count--
}

// Lookup returns the slot for fd if it is occupied and its recorded
// generation matches expectGen. A mismatch or an empty slot means the
// readiness event that led here is stale.
func (p *connPool) Lookup(fd int, expectGen uint32) (*conn, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fd < 0 || fd >= p.capacity {
		return nil, false
	}
	s := &p.slots[fd]
	if !s.occupied || s.generation != expectGen {
		return nil, false
	}
	return s, true
}

// Generation returns the current generation recorded for fd, used right
// after Acquire to build the Poller user-data value.
func (p *connPool) Generation(fd int) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots[fd].generation
}

// SweepExpired returns the descriptors of every occupied slot older than
// maxAge; it does not release them, the caller closes and releases each
// one. Implements the worker-0
// connection-timeout sweep (spec.md §4.1 step 2).
func (p *connPool) SweepExpired(maxAge time.Duration) []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var expired []int
	for i := range p.slots {
		s := &p.slots[i]
		if s.occupied && s.created.Before(cutoff) {
			expired = append(expired, s.fd)
		}
	}
	return expired
}
