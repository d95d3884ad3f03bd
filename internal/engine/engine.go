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

// Package engine is the kernel-event-driven HTTP Engine (E): a non-blocking
// accept loop, an epoll readiness multiplexer, a fixed connection pool with
// generation-counter use-after-free defense, a worker-thread pool, request
// parsing, and gathered-write response framing, per spec.md §4.1 and §5.
package engine

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Handler resolves and answers one request by filling in the Response it is
// given; E owns transmission and always closes the connection afterward
// (spec.md §4.1 step 6: "HTTP/1.0-style: no keep-alive across requests").
type Handler func(req *Request, resp *Response)

// Config is the subset of the server configuration the engine needs.
type Config struct {
	Bind           string
	Port           int
	Workers        int
	MaxConnections int
	ConnTimeout    time.Duration
	MaxRequestSize int

	// TrustedProxy gates the X-Real-IP/X-Forwarded-For/X-Forwarded-Proto
	// precedence in clientIP/isHTTPSForwarded: forwarded headers are only
	// honored when the raw socket peer equals this address. Empty disables
	// forwarded-header resolution entirely.
	TrustedProxy string
}

// Engine owns the listening socket, poller, connection pool, and response
// pool, and runs the worker loop described in spec.md §4.1.
type Engine struct {
	cfg      Config
	listenFD int
	poller   Poller
	pool     *connPool
	respPool *responsePool

	dispatch Handler

	shutdown atomic.Bool
	wg       sync.WaitGroup
}

// New builds an Engine bound to cfg. handler resolves every parsed request;
// Serve does not return until Shutdown is called or a fatal bind error
// occurs.
func New(cfg Config, handler Handler) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 8192
	}
	return &Engine{
		cfg:      cfg,
		pool:     newConnPool(cfg.MaxConnections, cfg.MaxRequestSize),
		respPool: newResponsePool(),
		dispatch: handler,
	}
}

// Serve binds the listening socket, registers it with the kernel-event
// queue, spawns the worker pool, and blocks until Shutdown is called.
func (e *Engine) Serve() error {
	fd, err := bindListener(e.cfg.Bind, e.cfg.Port)
	if err != nil {
		return fmt.Errorf("engine: bind: %w", err)
	}
	e.listenFD = fd

	p, err := newPoller()
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("engine: poller: %w", err)
	}
	e.poller = p

	const listenUserData = ^uint64(0) // sentinel: never a valid packed (slot,gen)
	if err := e.poller.Add(fd, listenUserData); err != nil {
		p.Close()
		unix.Close(fd)
		return fmt.Errorf("engine: register listener: %w", err)
	}

	for i := 0; i < e.cfg.Workers; i++ {
		e.wg.Add(1)
		go e.workerLoop(i, listenUserData)
	}

	e.wg.Wait()
	return nil
}

// Shutdown signals every worker to stop after its current poll wait and
// closes the listening socket.
func (e *Engine) Shutdown() {
	e.shutdown.Store(true)
	if e.poller != nil {
		e.poller.Close()
	}
	if e.listenFD != 0 {
		unix.Close(e.listenFD)
	}
}

func bindListener(bind string, port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}

	ip := net.ParseIP(bind)
	if ip == nil {
		ip = net.IPv4zero
	}
	var addr4 [4]byte
	copy(addr4[:], ip.To4())

	sa := &unix.SockaddrInet4{Port: port, Addr: addr4}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 1024); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, err
	}

	return fd, nil
}

// workerLoop is one worker thread's readiness-wait/dispatch cycle,
// implementing spec.md §4.1's numbered worker-loop steps.
func (e *Engine) workerLoop(id int, listenUserData uint64) {
	defer e.wg.Done()

	events := make([]ReadyEvent, 0, 64)
	for !e.shutdown.Load() {
		ready, err := e.poller.Wait(1000, events)
		if err != nil {
			if e.shutdown.Load() {
				return
			}
			continue
		}

		if id == 0 {
			e.sweepExpired()
		}

		for _, ev := range ready {
			if ev.UserData == listenUserData {
				e.acceptAll()
				continue
			}
			e.handleReady(ev)
		}
	}
}

// sweepExpired implements step 2: worker 0 closes any connection older
// than ConnTimeout.
func (e *Engine) sweepExpired() {
	for _, fd := range e.pool.SweepExpired(e.cfg.ConnTimeout) {
		e.closeConn(fd)
	}
}

// acceptAll drains the accept backlog, registering each new connection with
// the poller and the connection pool.
func (e *Engine) acceptAll() {
	for {
		nfd, sa, err := unix.Accept(e.listenFD)
		if err != nil {
			return
		}
		if err := unix.SetNonblock(nfd, true); err != nil {
			unix.Close(nfd)
			continue
		}

		peer := sockaddrToAddr(sa)
		if _, err := e.pool.Acquire(nfd, peer); err != nil {
			// at capacity: spec.md §3 "accept failures when full produce a
			// 503 response" — send it synchronously, then drop the conn.
			e.sendPlain(nfd, 503, "Service Unavailable")
			unix.Close(nfd)
			continue
		}

		gen := e.pool.Generation(nfd)
		if err := e.poller.Add(nfd, packUserData(nfd, gen)); err != nil {
			e.pool.Release(nfd)
			unix.Close(nfd)
			continue
		}
	}
}

// handleReady processes one readiness event for a connection descriptor,
// implementing steps 3-6 of the worker loop.
func (e *Engine) handleReady(ev ReadyEvent) {
	fd, gen := unpackUserData(ev.UserData)

	c, ok := e.pool.Lookup(fd, gen)
	if !ok {
		return // stale event: slot was released/reused since registration
	}

	if ev.HangupOrError {
		e.closeConn(fd)
		return
	}

	n, err := unix.Read(fd, c.buf[c.nread:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		e.closeConn(fd)
		return
	}
	if n == 0 {
		e.closeConn(fd)
		return
	}
	c.nread += n

	end := headerEnd(c.buf[:c.nread])
	if end < 0 {
		if c.nread >= len(c.buf) {
			e.sendPlain(fd, 400, "Bad Request")
			e.closeConn(fd)
		}
		return // partial request; wait for more readiness events
	}

	method, path, query, version, perr := parseRequestLine(c.buf[:end])
	if perr != nil {
		e.sendPlain(fd, 400, "Bad Request")
		e.closeConn(fd)
		return
	}

	headers := c.buf[:end]
	req := &Request{
		Method:      method,
		Path:        path,
		Query:       query,
		Version:     version,
		Peer:        c.peer,
		ClientIP:    clientIP(headers, c.peer, e.cfg.TrustedProxy),
		IsHTTPS:     isHTTPSForwarded(headers, c.peer, e.cfg.TrustedProxy),
		headerBlock: headers,
	}

	resp := e.respPool.Acquire()
	e.dispatch(req, resp)
	e.send(fd, resp)
	e.respPool.Release(resp)

	// HTTP/1.0-style: always close after one request, per spec.md §4.1 step 6.
	e.closeConn(fd)
}

func (e *Engine) closeConn(fd int) {
	e.poller.Remove(fd)
	e.pool.Release(fd)
	unix.Close(fd)
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	default:
		return nil
	}
}
