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

// Package templatestore is the Template Store (T): at startup it loads every
// regular file directly under the templates directory into an in-memory
// basename→bytes map, and renders the four-placeholder shell composition
// described by spec.md §4.3. The live map is held behind an atomic pointer so
// an optional fsnotify-driven reload can swap it in without a lock.
package templatestore

import (
	"fmt"
	"os"
	"path/filepath"

	libatm "github.com/nabbar/golib/atomic"
)

// Store is the read-only-after-load template cache.
type Store struct {
	dir  string
	live libatm.Value[map[string]string]
}

// New loads every regular file directly under dir into the store. A missing
// directory, an unreadable directory, or zero loadable templates aborts
// startup by returning an error, per spec.md §4.3.
func New(dir string) (*Store, error) {
	s := &Store{dir: dir, live: libatm.NewValue[map[string]string]()}

	tpl, err := load(dir)
	if err != nil {
		return nil, err
	}

	s.live.Store(tpl)
	return s, nil
}

// load enumerates dir non-recursively and reads every regular file found.
func load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("templatestore: reading %s: %w", dir, err)
	}

	tpl := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("templatestore: reading template %s: %w", entry.Name(), err)
		}

		tpl[entry.Name()] = string(data)
	}

	if len(tpl) == 0 {
		return nil, fmt.Errorf("templatestore: no readable templates under %s", dir)
	}

	return tpl, nil
}

// Get returns the bytes of basename and whether it was found.
func (s *Store) Get(basename string) (string, bool) {
	tpl := s.live.Load()
	v, ok := tpl[basename]
	return v, ok
}

// Reload re-reads the templates directory and atomically swaps the live map,
// so a reload is visible to new requests without ever exposing a torn state
// (spec.md §4.3 design note: "any dynamic reload must replace the map
// atomically").
func (s *Store) Reload() error {
	tpl, err := load(s.dir)
	if err != nil {
		return err
	}

	s.live.Store(tpl)
	return nil
}
