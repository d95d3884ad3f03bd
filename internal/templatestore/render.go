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

package templatestore

import (
	"fmt"
	"sort"
	"strings"
)

// shellTemplate is the basename of the single page shell every view is
// composed into (spec.md §4.3).
const shellTemplate = "base.html"

// View is one composition request: a page content fragment plus optional
// extra-head and extra-js fragments, substituted into the shell template.
type View struct {
	Title     string
	PageBody  string // the already-rendered page_content fragment
	ExtraHead string
	ExtraJS   string
}

// Render composes the shell template with v's fragments by first-occurrence,
// non-recursive, in-order substitution of {{title}}, {{page_content}},
// {{extra_head}}, {{extra_js}}. A placeholder not present in the shell
// contributes no output; placeholders appearing inside a substituted
// fragment are emitted verbatim (substitution is not recursive).
func (s *Store) Render(v View) (string, error) {
	shell, ok := s.Get(shellTemplate)
	if !ok {
		return "", fmt.Errorf("templatestore: missing shell template %s", shellTemplate)
	}

	// Splice right to left at the shell's own placeholder offsets, so a
	// placeholder that appears inside an already inserted value is never
	// replaced and earlier offsets stay valid.
	subs := []struct{ ph, val string }{
		{"{{title}}", v.Title}, {"{{page_content}}", v.PageBody},
		{"{{extra_head}}", v.ExtraHead}, {"{{extra_js}}", v.ExtraJS},
	}
	sort.Slice(subs, func(i, j int) bool { return strings.Index(shell, subs[i].ph) > strings.Index(shell, subs[j].ph) })

	out := shell
	for _, s := range subs {
		if strings.Contains(shell, s.ph) {
			out = replaceFirst(out, s.ph, s.val)
		}
	}

	return out, nil
}

// RenderFragment loads a named fragment template and returns its raw bytes,
// or "" if the fragment file is not present (spec.md §4.3: "missing fragment
// files are treated as empty strings").
func (s *Store) RenderFragment(basename string) string {
	if basename == "" {
		return ""
	}
	v, _ := s.Get(basename)
	return v
}

// replaceFirst replaces only the first occurrence of placeholder in s.
func replaceFirst(s, placeholder, value string) string {
	idx := strings.Index(s, placeholder)
	if idx < 0 {
		return s
	}
	return s[:idx] + value + s[idx+len(placeholder):]
}
