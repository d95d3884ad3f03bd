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
	"strings"
	"testing"
)

func TestResponsePoolReusesReleased(t *testing.T) {
	p := newResponsePool()

	r := p.Acquire()
	r.Status = 200
	r.Body = []byte("hello")
	p.Release(r)

	r2 := p.Acquire()
	if r2 != r {
		t.Fatalf("expected Acquire to return the just-released object")
	}
	if r2.Status != 0 || r2.Body != nil {
		t.Fatalf("expected reset object, got Status=%d Body=%q", r2.Status, r2.Body)
	}
}

func TestResponsePoolCapsRetainedObjects(t *testing.T) {
	p := newResponsePool()

	released := make([]*Response, 0, responsePoolCap+10)
	for i := 0; i < responsePoolCap+10; i++ {
		released = append(released, &Response{})
	}
	for _, r := range released {
		p.Release(r)
	}

	if len(p.stack) != responsePoolCap {
		t.Fatalf("stack len = %d, want %d", len(p.stack), responsePoolCap)
	}
}

func TestBuildHeaderFieldsDefaultsContentType(t *testing.T) {
	header := buildHeader(&Response{Status: 200, Body: []byte("ok")})
	s := string(header)
	if !strings.Contains(s, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("missing status line: %q", s)
	}
	if !strings.Contains(s, "Content-Type: application/octet-stream\r\n") {
		t.Fatalf("missing default content type: %q", s)
	}
	if !strings.Contains(s, "Content-Length: 2\r\n") {
		t.Fatalf("missing content length: %q", s)
	}
	if !strings.Contains(s, "Connection: close\r\n") {
		t.Fatalf("missing connection close: %q", s)
	}
	if !strings.Contains(s, "Server: miniweb\r\n") {
		t.Fatalf("missing server token: %q", s)
	}
}

func TestReasonPhraseUnknownStatus(t *testing.T) {
	if got := reasonPhrase(999); got != "Unknown" {
		t.Fatalf("reasonPhrase(999) = %q, want Unknown", got)
	}
}
