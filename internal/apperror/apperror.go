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

// Package apperror provides the coded-error taxonomy used across the server:
// a small, closed set of error kinds that map to HTTP status codes through a
// single translation table, instead of ad-hoc status juggling in handlers.
package apperror

import "fmt"

// Code is a small closed taxonomy of error kinds, similar in spirit to an HTTP
// status code but scoped to the handful of kinds this server ever produces.
type Code uint16

const (
	// CodeNone indicates no error.
	CodeNone Code = 0

	// CodeParse covers malformed request lines or headers.
	CodeParse Code = 400

	// CodeBadArgument covers invalid query parameters.
	CodeBadArgument Code = 401

	// CodeForbidden covers path traversal and invalid area names.
	CodeForbidden Code = 403

	// CodeNotFound covers unmatched routes and missing files.
	CodeNotFound Code = 404

	// CodeInternal covers allocation, snapshot, template, or subprocess failure.
	CodeInternal Code = 500

	// CodeBackpressure covers a full connection pool.
	CodeBackpressure Code = 503

	// CodeTransport covers socket I/O errors; never rendered to a client.
	CodeTransport Code = 1000
)

// translation is the single table mapping a Code to its HTTP status and reason
// phrase. Handlers never compute a status themselves; they pass a Code to the
// handler package's response helpers, which resolve it here.
var translation = map[Code]struct {
	status int
	reason string
}{
	CodeParse:        {400, "Bad Request"},
	CodeBadArgument:  {400, "Bad Request"},
	CodeForbidden:    {403, "Forbidden"},
	CodeNotFound:     {404, "Not Found"},
	CodeInternal:     {500, "Internal Server Error"},
	CodeBackpressure: {503, "Service Unavailable"},
}

// Status returns the HTTP status code and reason phrase for c. Unknown codes
// translate to 500 "Internal Server Error".
func (c Code) Status() (int, string) {
	if t, ok := translation[c]; ok {
		return t.status, t.reason
	}
	return 500, "Internal Server Error"
}

// Error carries a Code plus an optional wrapped cause and message, forming a
// single-level parent chain (enough for this server's needs; no deep
// hierarchy is required the way the teacher's general-purpose errors package
// supports).
type Error struct {
	code   Code
	msg    string
	parent error
}

// New builds an Error of the given code with message msg.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap builds an Error of the given code wrapping cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{code: code, msg: msg, parent: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.parent != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
	}
	return e.msg
}

// Unwrap allows errors.Is / errors.As to see through to the parent cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.parent
}

// Code returns the error's kind.
func (e *Error) Code() Code {
	if e == nil {
		return CodeNone
	}
	return e.code
}

// IsCode reports whether e carries the given code.
func (e *Error) IsCode(code Code) bool {
	return e != nil && e.code == code
}
