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
	"testing"
)

func TestAdvanceWithinFirstBuffer(t *testing.T) {
	iov := [][]byte{[]byte("header"), []byte("body")}
	out := advance(iov, 3)

	if len(out) != 2 || !bytes.Equal(out[0], []byte("der")) || !bytes.Equal(out[1], []byte("body")) {
		t.Fatalf("advance() = %v", toStrings(out))
	}
}

func TestAdvancePastFirstBuffer(t *testing.T) {
	iov := [][]byte{[]byte("header"), []byte("body")}
	out := advance(iov, len("header")+2)

	if len(out) != 1 || !bytes.Equal(out[0], []byte("dy")) {
		t.Fatalf("advance() = %v", toStrings(out))
	}
}

func TestAdvanceExactlyAllBuffers(t *testing.T) {
	iov := [][]byte{[]byte("header"), []byte("body")}
	out := advance(iov, len("header")+len("body"))

	if len(out) != 0 {
		t.Fatalf("advance() = %v, want empty", toStrings(out))
	}
}

func TestAdvanceSkipsEmptyBuffers(t *testing.T) {
	iov := [][]byte{[]byte(""), []byte("body")}
	out := advance(iov, 0)

	if len(out) != 1 || !bytes.Equal(out[0], []byte("body")) {
		t.Fatalf("advance() = %v", toStrings(out))
	}
}

func toStrings(bufs [][]byte) []string {
	out := make([]string, len(bufs))
	for i, b := range bufs {
		out[i] = string(b)
	}
	return out
}
