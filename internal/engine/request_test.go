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
	"strings"
	"testing"
)

func TestHeaderEnd(t *testing.T) {
	if got := headerEnd([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")); got != len("GET / HTTP/1.1\r\nHost: x\r\n\r\n") {
		t.Fatalf("headerEnd() = %d, want full length", got)
	}
	if got := headerEnd([]byte("GET / HTTP/1.1\r\nHost: x\r\n")); got != -1 {
		t.Fatalf("headerEnd() = %d, want -1 for incomplete block", got)
	}
}

func TestParseRequestLine(t *testing.T) {
	method, path, query, version, err := parseRequestLine([]byte("GET /api/metrics?unit=mb HTTP/1.1"))
	if err != nil {
		t.Fatalf("parseRequestLine: %v", err)
	}
	if method != "GET" || path != "/api/metrics" || query != "unit=mb" || version != "HTTP/1.1" {
		t.Fatalf("got (%q,%q,%q,%q)", method, path, query, version)
	}
}

func TestParseRequestLineNoQuery(t *testing.T) {
	_, path, query, _, err := parseRequestLine([]byte("GET / HTTP/1.1"))
	if err != nil {
		t.Fatalf("parseRequestLine: %v", err)
	}
	if path != "/" || query != "" {
		t.Fatalf("got path=%q query=%q", path, query)
	}
}

func TestParseRequestLineRejectsMalformed(t *testing.T) {
	if _, _, _, _, err := parseRequestLine([]byte("GET /")); err == nil {
		t.Fatalf("expected error for two-token request line")
	}
}

func TestParseRequestLineRejectsOversizedMethod(t *testing.T) {
	oversized := strings.Repeat("A", maxMethodLen+1)
	if _, _, _, _, err := parseRequestLine([]byte(oversized + " / HTTP/1.1")); err == nil {
		t.Fatalf("expected error for oversized method")
	}
}

func TestParseRequestLineRejectsOversizedURL(t *testing.T) {
	oversized := "/" + strings.Repeat("a", maxURLLen)
	if _, _, _, _, err := parseRequestLine([]byte("GET " + oversized + " HTTP/1.1")); err == nil {
		t.Fatalf("expected error for oversized URL")
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	buf := []byte("GET / HTTP/1.1\r\nX-Real-IP: 10.0.0.1\r\nHost: example\r\n\r\n")
	v, ok := headerValue(buf, "x-real-ip")
	if !ok || v != "10.0.0.1" {
		t.Fatalf("headerValue() = (%q, %v), want (10.0.0.1, true)", v, ok)
	}
}

func TestHeaderValueMissing(t *testing.T) {
	buf := []byte("GET / HTTP/1.1\r\nHost: example\r\n\r\n")
	if _, ok := headerValue(buf, "X-Real-IP"); ok {
		t.Fatalf("expected missing header to report false")
	}
}

func TestClientIPUsesPeerWhenNotTrusted(t *testing.T) {
	peer := &net.TCPAddr{IP: net.ParseIP("203.0.113.9"), Port: 5555}
	buf := []byte("GET / HTTP/1.1\r\nX-Real-IP: 10.0.0.1\r\n\r\n")
	if got := clientIP(buf, peer, "127.0.0.1"); got != "203.0.113.9" {
		t.Fatalf("clientIP() = %q, want peer address (untrusted proxy)", got)
	}
}

func TestClientIPPrefersXRealIPFromTrustedProxy(t *testing.T) {
	peer := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5555}
	buf := []byte("GET / HTTP/1.1\r\nX-Real-IP: 10.0.0.1\r\nX-Forwarded-For: 10.0.0.2, 10.0.0.3\r\n\r\n")
	if got := clientIP(buf, peer, "127.0.0.1"); got != "10.0.0.1" {
		t.Fatalf("clientIP() = %q, want 10.0.0.1", got)
	}
}

func TestClientIPFallsBackToForwardedForFirstToken(t *testing.T) {
	peer := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5555}
	buf := []byte("GET / HTTP/1.1\r\nX-Forwarded-For: 10.0.0.2, 10.0.0.3\r\n\r\n")
	if got := clientIP(buf, peer, "127.0.0.1"); got != "10.0.0.2" {
		t.Fatalf("clientIP() = %q, want 10.0.0.2", got)
	}
}

func TestIsHTTPSForwardedRequiresTrustedProxy(t *testing.T) {
	peer := &net.TCPAddr{IP: net.ParseIP("203.0.113.9"), Port: 5555}
	buf := []byte("GET / HTTP/1.1\r\nX-Forwarded-Proto: https\r\n\r\n")
	if isHTTPSForwarded(buf, peer, "127.0.0.1") {
		t.Fatalf("expected false: peer is not the trusted proxy")
	}
}

func TestIsHTTPSForwardedTrue(t *testing.T) {
	peer := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5555}
	buf := []byte("GET / HTTP/1.1\r\nX-Forwarded-Proto: https\r\n\r\n")
	if !isHTTPSForwarded(buf, peer, "127.0.0.1") {
		t.Fatalf("expected true: trusted proxy forwarding https")
	}
}
