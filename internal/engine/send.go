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
	"fmt"
	"strconv"
)

// productToken is the Server header value, per spec.md §4.1.
const productToken = "miniweb"

var reasonPhrases = map[int]string{
	200: "OK",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

func reasonPhrase(status int) string {
	if r, ok := reasonPhrases[status]; ok {
		return r
	}
	return "Unknown"
}

// send frames resp per spec.md §4.1's response-framing contract (status
// line, mandatory headers, extra headers, gathered write) and transmits it
// on fd.
func (e *Engine) send(fd int, resp *Response) {
	header := buildHeader(resp)
	if err := writeGathered(fd, header, resp.Body); err != nil {
		return // transport error: caller closes the connection regardless
	}
}

// sendPlain emits a minimal text/html error shell with no body pooling,
// used for transport-level errors detected before a Response exists
// (malformed request line, pool at capacity).
func (e *Engine) sendPlain(fd int, status int, message string) {
	body := []byte(fmt.Sprintf("<html><body><h1>%d %s</h1><p>%s</p></body></html>",
		status, reasonPhrase(status), message))
	header := buildHeaderFields(status, "text/html", len(body), nil)
	_ = writeGathered(fd, header, body)
}

func buildHeader(resp *Response) []byte {
	ct := resp.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return buildHeaderFields(resp.Status, ct, len(resp.Body), resp.ExtraHeader)
}

func buildHeaderFields(status int, contentType string, bodyLen int, extra []byte) []byte {
	var buf []byte
	buf = append(buf, "HTTP/1.1 "...)
	buf = append(buf, strconv.Itoa(status)...)
	buf = append(buf, ' ')
	buf = append(buf, reasonPhrase(status)...)
	buf = append(buf, "\r\n"...)

	buf = append(buf, "Content-Type: "...)
	buf = append(buf, contentType...)
	buf = append(buf, "\r\n"...)

	buf = append(buf, "Content-Length: "...)
	buf = append(buf, strconv.Itoa(bodyLen)...)
	buf = append(buf, "\r\n"...)

	buf = append(buf, "Connection: close\r\n"...)
	buf = append(buf, "Server: "...)
	buf = append(buf, productToken...)
	buf = append(buf, "\r\n"...)

	if len(extra) > 0 {
		buf = append(buf, extra...)
	}
	buf = append(buf, "\r\n"...)
	return buf
}
