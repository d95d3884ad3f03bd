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
	"bytes"
	"net"
	"strings"
)

const (
	maxMethodLen  = 31
	maxURLLen     = 511
	maxVersionLen = 31
)

// Request is the per-connection request context (spec.md §3's "Request
// context"): it exists only for the duration of one handler invocation and
// is built from the connection's read buffer; headerBlock aliases that
// buffer, while the request-line fields are string copies.
type Request struct {
	Method  string
	Path    string
	Query   string
	Version string
	Peer    net.Addr

	// ClientIP and IsHTTPS are resolved by clientIP/isHTTPSForwarded in
	// handleReady, honoring the trusted-proxy-gated X-Real-IP/
	// X-Forwarded-For/X-Forwarded-Proto precedence of spec.md §4.1.
	ClientIP string
	IsHTTPS  bool

	headerBlock []byte
}

// headerEnd reports the offset just past the first blank-line CRLFCRLF in
// buf, or -1 if the header block is not yet complete.
func headerEnd(buf []byte) int {
	idx := bytes.Index(buf, []byte("\r\n\r\n"))
	if idx < 0 {
		return -1
	}
	return idx + 4
}

// parseRequestLine parses "METHOD SP URL SP VERSION CRLF" from the start of
// buf, enforcing spec.md §4.1's hard caps on each token.
func parseRequestLine(buf []byte) (method, path, query, version string, err error) {
	lineEnd := bytes.IndexByte(buf, '\n')
	if lineEnd < 0 {
		return "", "", "", "", errParse{"no CRLF in request line"}
	}
	line := buf[:lineEnd]
	line = bytes.TrimSuffix(line, []byte("\r"))

	parts := bytes.SplitN(line, []byte(" "), 3)
	if len(parts) != 3 {
		return "", "", "", "", errParse{"malformed request line"}
	}

	if len(parts[0]) == 0 || len(parts[0]) > maxMethodLen {
		return "", "", "", "", errParse{"method length"}
	}
	if len(parts[1]) == 0 || len(parts[1]) > maxURLLen {
		return "", "", "", "", errParse{"url length"}
	}
	if len(parts[2]) == 0 || len(parts[2]) > maxVersionLen {
		return "", "", "", "", errParse{"version length"}
	}

	url := string(parts[1])
	p, q, _ := strings.Cut(url, "?")

	return string(parts[0]), p, q, string(parts[2]), nil
}

// headerValue scans buf (the full header block) for name, case-insensitive,
// and returns its trimmed value and whether it was found.
func headerValue(buf []byte, name string) (string, bool) {
	lines := bytes.Split(buf, []byte("\r\n"))
	for _, line := range lines {
		idx := bytes.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		if !strings.EqualFold(string(line[:idx]), name) {
			continue
		}
		return string(bytes.TrimSpace(line[idx+1:])), true
	}
	return "", false
}

type errParse struct{ msg string }

func (e errParse) Error() string { return "engine: parse error: " + e.msg }

// clientIP resolves the caller's address following spec.md §4.1's
// precedence: X-Real-IP, then the first token of X-Forwarded-For, then the
// socket peer — forwarded headers are only honored when peer equals
// trustedProxy.
func clientIP(headers []byte, peer net.Addr, trustedProxy string) string {
	peerHost := peerHostOnly(peer)

	if trustedProxy == "" || peerHost != trustedProxy {
		return peerHost
	}

	if v, ok := headerValue(headers, "X-Real-IP"); ok && v != "" {
		return v
	}
	if v, ok := headerValue(headers, "X-Forwarded-For"); ok {
		first, _, _ := strings.Cut(v, ",")
		first = strings.TrimSpace(first)
		if first != "" {
			return first
		}
	}
	return peerHost
}

func peerHostOnly(peer net.Addr) string {
	if peer == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(peer.String())
	if err != nil {
		return peer.String()
	}
	return host
}

// isHTTPSForwarded reports whether the request should be treated as HTTPS,
// per spec.md §4.1's trusted-proxy-gated X-Forwarded-Proto check.
func isHTTPSForwarded(headers []byte, peer net.Addr, trustedProxy string) bool {
	if trustedProxy == "" || peerHostOnly(peer) != trustedProxy {
		return false
	}
	v, ok := headerValue(headers, "X-Forwarded-Proto")
	return ok && strings.EqualFold(v, "https")
}
