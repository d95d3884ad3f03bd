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

// Package staticcache is the Static File Cache (F): a two-table,
// admission-controlled, rate-limited, mtime-validated in-memory cache of
// small file contents, per spec.md §4.4. The main table holds at most N
// entries; a parallel admission table sized 2N tracks hit counts for paths
// not yet promoted, suppressing one-shot cache pollution.
package staticcache

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Stat is the caller-supplied file identity used to validate a cached entry
// without the cache itself touching the filesystem.
type Stat struct {
	ModTime time.Time
	Size    int64
}

type entry struct {
	bytes      []byte
	stat       Stat
	lastAccess time.Time
}

type admissionEntry struct {
	hits      int
	lastTouch time.Time
}

// Cache is the two-table static file cache. Zero value is not usable; build
// one with New.
type Cache struct {
	mu sync.Mutex

	maxEntries int
	maxAge     time.Duration
	maxBytes   int64

	main      map[string]entry
	admission map[string]admissionEntry

	limiter *rate.Limiter
}

// Options configures a Cache. Zero-valued fields fall back to the package
// defaults documented alongside DefaultOptions.
type Options struct {
	MaxEntries      int           // N; admission table is sized 2N
	MaxAge          time.Duration // entries older than this (by last access) are swept
	MaxBytes        int64         // files larger than this bypass the cache
	TokensPerSecond int           // K: insertions allowed per wall-clock second
}

// DefaultOptions mirrors the values miniweb ships with: a 64-entry main
// table, a 5 minute sweep age, a 256 KiB per-file ceiling, and 32
// insertions/second.
func DefaultOptions() Options {
	return Options{
		MaxEntries:      64,
		MaxAge:          5 * time.Minute,
		MaxBytes:        256 * 1024,
		TokensPerSecond: 32,
	}
}

// New builds a Cache from opts, substituting DefaultOptions for any
// zero-valued field.
func New(opts Options) *Cache {
	def := DefaultOptions()
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = def.MaxEntries
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = def.MaxAge
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = def.MaxBytes
	}
	if opts.TokensPerSecond <= 0 {
		opts.TokensPerSecond = def.TokensPerSecond
	}

	return &Cache{
		maxEntries: opts.MaxEntries,
		maxAge:     opts.MaxAge,
		maxBytes:   opts.MaxBytes,
		main:       make(map[string]entry, opts.MaxEntries),
		admission:  make(map[string]admissionEntry, opts.MaxEntries*2),
		limiter:    rate.NewLimiter(rate.Limit(opts.TokensPerSecond), opts.TokensPerSecond),
	}
}

// Lookup returns the cached bytes for path if present and stat-valid. A
// mismatched mtime or size is treated as a miss; the stale entry is left in
// place (spec.md §4.4 "Validity"). Such a miss does not count toward
// admission, so Store does not refresh the stale entry; it stays until swept
// or evicted to make room for another path.
func (c *Cache) Lookup(path string, stat Stat) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()

	e, ok := c.main[path]
	if !ok {
		c.touchAdmissionLocked(path)
		return nil, false
	}
	if !e.stat.ModTime.Equal(stat.ModTime) || e.stat.Size != stat.Size {
		return nil, false
	}

	e.lastAccess = time.Now()
	c.main[path] = e

	out := make([]byte, len(e.bytes))
	copy(out, e.bytes)
	return out, true
}

// Store attempts to insert path into the cache. It is a no-op when the file
// exceeds MaxBytes, when the path has not yet been admitted (missed on at
// least two distinct requests, each surfaced through a prior Lookup call),
// or when the insertion token bucket is exhausted.
func (c *Cache) Store(path string, stat Stat, data []byte) {
	if stat.Size <= 0 || stat.Size > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()

	if !c.isAdmittedLocked(path) {
		return
	}
	if !c.limiter.Allow() {
		return
	}

	if len(c.main) >= c.maxEntries {
		if _, exists := c.main[path]; !exists {
			c.evictOldestLocked()
		}
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	c.main[path] = entry{bytes: cp, stat: stat, lastAccess: time.Now()}
	delete(c.admission, path)
}

// touchAdmissionLocked increments path's admission hit counter. Callers must
// hold c.mu.
func (c *Cache) touchAdmissionLocked(path string) {
	a := c.admission[path]
	a.hits++
	a.lastTouch = time.Now()
	c.admission[path] = a
}

// isAdmittedLocked reports whether path has accumulated at least two
// admission hits. It is read-only: only Lookup's miss path (touchAdmissionLocked)
// increments the counter, so a single request's Lookup-then-Store pair can
// never promote a path by itself — promotion requires two distinct requests
// to have missed. Callers must hold c.mu.
func (c *Cache) isAdmittedLocked(path string) bool {
	return c.admission[path].hits >= 2
}

// evictOldestLocked drops the main-table entry with the oldest last-access
// time. Callers must hold c.mu and have already verified the table is full.
func (c *Cache) evictOldestLocked() {
	var oldestPath string
	var oldestAt time.Time

	for p, e := range c.main {
		if oldestPath == "" || e.lastAccess.Before(oldestAt) {
			oldestPath = p
			oldestAt = e.lastAccess
		}
	}
	if oldestPath != "" {
		delete(c.main, oldestPath)
	}
}

// sweepLocked drops every main and admission entry whose last-touch time
// exceeds maxAge. Callers must hold c.mu.
func (c *Cache) sweepLocked() {
	cutoff := time.Now().Add(-c.maxAge)

	for p, e := range c.main {
		if e.lastAccess.Before(cutoff) {
			delete(c.main, p)
		}
	}
	for p, a := range c.admission {
		if a.lastTouch.Before(cutoff) {
			delete(c.admission, p)
		}
	}
}

// Len returns the current main-table entry count, for diagnostics and tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.main)
}
