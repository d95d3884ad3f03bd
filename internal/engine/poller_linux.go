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

//go:build linux && amd64

package engine

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// epollPoller is the Linux readiness multiplexer, backing the Poller
// interface with epoll_create1/epoll_ctl/epoll_wait. The epoll_data union is
// packed as a single uint64 user-data value (slot index in the high 32 bits,
// generation counter in the low 32 bits) via the Fd/Pad fields of
// unix.EpollEvent, which are laid out contiguously on linux/amd64 — this is
// why the build is restricted to that one architecture rather than generalized
// across every GOARCH ztypes layout.
type epollPoller struct {
	fd int
}

// newPoller constructs the kernel-event queue for this platform.
func newPoller() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{fd: fd}, nil
}

func eventUserData(ev *unix.EpollEvent) *uint64 {
	return (*uint64)(unsafe.Pointer(&ev.Fd))
}

func (p *epollPoller) Add(fd int, userdata uint64) error {
	var ev unix.EpollEvent
	ev.Events = unix.EPOLLIN | unix.EPOLLRDHUP
	*eventUserData(&ev) = userdata
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks up to timeoutMS for up to len(out) ready descriptors,
// returning the ready user-data values and hangup/error flags.
func (p *epollPoller) Wait(timeoutMS int, out []ReadyEvent) ([]ReadyEvent, error) {
	raw := make([]unix.EpollEvent, cap(out))
	n, err := unix.EpollWait(p.fd, raw, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return out[:0], nil
		}
		return nil, err
	}

	out = out[:0]
	for i := 0; i < n; i++ {
		hup := raw[i].Events&(unix.EPOLLHUP|unix.EPOLLERR|unix.EPOLLRDHUP) != 0
		out = append(out, ReadyEvent{UserData: *eventUserData(&raw[i]), HangupOrError: hup})
	}
	return out, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.fd)
}
