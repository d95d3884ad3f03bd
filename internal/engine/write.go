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
	"time"

	"golang.org/x/sys/unix"
)

const (
	writeRetryBudget = 256
	writeRetryDelay  = 100 * time.Millisecond
)

// writeGathered emits header and body as a single vectorized write
// (writev), retrying on partial progress and on EAGAIN up to
// writeRetryBudget times, per spec.md §4.1's response-framing contract.
func writeGathered(fd int, header, body []byte) error {
	iov := [][]byte{header, body}

	attempts := 0
	for {
		n, err := writevOnce(fd, iov)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				attempts++
				if attempts > writeRetryBudget {
					return errParse{"write retry budget exhausted"}
				}
				time.Sleep(writeRetryDelay)
				continue
			}
			return err
		}

		iov = advance(iov, n)
		if len(iov) == 0 {
			return nil
		}
	}
}

// writevOnce issues a single writev syscall over the non-empty buffers in
// iov, returning the number of bytes written.
func writevOnce(fd int, iov [][]byte) (int, error) {
	bufs := make([][]byte, 0, len(iov))
	for _, b := range iov {
		if len(b) > 0 {
			bufs = append(bufs, b)
		}
	}
	if len(bufs) == 0 {
		return 0, nil
	}
	return unix.Writev(fd, bufs)
}

// advance drops n written bytes from the front of iov, returning the
// remaining (possibly empty) buffers still to be written.
func advance(iov [][]byte, n int) [][]byte {
	out := iov[:0]
	for _, b := range iov {
		if n <= 0 {
			if len(b) > 0 {
				out = append(out, b)
			}
			continue
		}
		if n >= len(b) {
			n -= len(b)
			continue
		}
		out = append(out, b[n:])
		n = 0
	}
	return out
}
