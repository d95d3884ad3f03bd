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

// ReadyEvent is one readiness notification returned by a Poller. UserData
// carries whatever opaque value was registered with Add — the engine packs
// the connection slot index and its generation counter into it, so a stale
// event can be detected without a second lookup.
type ReadyEvent struct {
	UserData      uint64
	HangupOrError bool
}

// Poller is the readiness multiplexer abstraction E is built on. The only
// implementation shipped is epoll (Linux/amd64); the interface exists so a
// kqueue backend could be added for BSD/Darwin without touching the engine.
type Poller interface {
	Add(fd int, userdata uint64) error
	Remove(fd int) error
	Wait(timeoutMS int, out []ReadyEvent) ([]ReadyEvent, error)
	Close() error
}

// packUserData combines a connection slot index and its generation counter
// into the single uint64 a Poller carries per registration.
func packUserData(slot int, generation uint32) uint64 {
	return uint64(uint32(slot))<<32 | uint64(generation)
}

func unpackUserData(v uint64) (slot int, generation uint32) {
	return int(v >> 32), uint32(v)
}
