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

// Package procexec is the Command Executor (X): it runs an external binary
// with an explicit argument vector, captures stdout up to a byte cap under a
// wall-clock deadline, isolates stderr, and kills the child on timeout. Stderr
// is never mixed into the captured output — doing so could surface a tool's
// error text as 200-status content to the client.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ErrTimeout is returned when the subprocess did not finish within the
// configured deadline.
var ErrTimeout = errors.New("procexec: subprocess timed out")

// ErrEmptyOutput is returned when the subprocess produced no output, even if
// it exited cleanly and within the deadline (spec.md §4.5: "success only when
// the output is non-empty").
var ErrEmptyOutput = errors.New("procexec: subprocess produced no output")

// Run launches path with argv, captures up to maxOutputBytes of standard
// output, and enforces timeout as an absolute wall-clock deadline. Standard
// error is redirected to the null device, never captured. The child is killed
// if it outlives the deadline. Run always waits for the child to be reaped.
func Run(ctx context.Context, path string, argv []string, maxOutputBytes int, timeout time.Duration) ([]byte, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(deadlineCtx, path, argv...)
	cmd.Env = []string{}

	// Run the child in its own process group so a timeout kills the whole
	// group, not just the immediate child — mirrors spec.md §4.5's "send KILL
	// to the child" for tools that spawn helpers of their own.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	defer func() { _ = devNull.Close() }()
	cmd.Stderr = devNull

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err = cmd.Start(); err != nil {
		return nil, err
	}

	limited := io.LimitReader(stdout, int64(maxOutputBytes))

	var buf bytes.Buffer
	readDone := make(chan error, 1)
	go func() {
		_, copyErr := io.Copy(&buf, limited)
		readDone <- copyErr
	}()

	waitErr := cmd.Wait()

	select {
	case <-readDone:
	case <-time.After(time.Second):
		// stdout pipe did not close promptly after Wait; fall through with
		// whatever has been read so far rather than blocking indefinitely.
	}

	if deadlineCtx.Err() == context.DeadlineExceeded {
		return nil, ErrTimeout
	}

	if waitErr != nil && buf.Len() == 0 {
		return nil, waitErr
	}

	if buf.Len() == 0 {
		return nil, ErrEmptyOutput
	}

	return buf.Bytes(), nil
}
