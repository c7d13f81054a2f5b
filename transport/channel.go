// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package transport implements the Subprocess Channel (spec.md §4.1): it
// spawns the external compiler binary, owns the connection to its
// stdin/stdout, and frames length-prefixed protocol messages over it.
//
// The child's stdin and stdout are the two directions of a single
// AF_UNIX SOCK_STREAM socket pair rather than a pair of anonymous pipes,
// per spec.md §4.1's instruction not to rely on the host runtime's own
// pipe plumbing: one end is handed to the child as both its stdin and
// its stdout, the other is kept by the host wrapped in a *net.UnixConn
// so Receive can use a real read deadline for its timeout.
package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/sass-embedded/host-go/sasserr"
)

// maxFrameBytes bounds a single inbound frame so a corrupted or
// adversarial length prefix can't make Receive allocate without limit.
const maxFrameBytes = 256 << 20 // 256MiB

// Channel owns one compiler subprocess and the framed connection to it.
// Exclusive to its Supervisor; never shared across goroutines
// concurrently (spec.md §4.1, §5).
type Channel struct {
	cmd  *exec.Cmd
	conn net.Conn
	r    *bufio.Reader

	mu          sync.Mutex
	terminated  bool
}

// Spawn starts path with args in cwd, wiring its stdin/stdout to a fresh
// socket pair. Failure to start is reported as a LifecycleError
// (spec.md §4.1).
func Spawn(path string, args []string, cwd string) (*Channel, error) {
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, &sasserr.LifecycleError{Message: "create subprocess socket pair", Cause: err}
	}
	hostFile := os.NewFile(uintptr(fds[0]), "sass-compiler-host")
	childFile := os.NewFile(uintptr(fds[1]), "sass-compiler-child")
	defer childFile.Close()

	cmd := exec.Command(path, args...)
	cmd.Dir = cwd
	cmd.Stdin = childFile
	cmd.Stdout = childFile
	cmd.Stderr = nil // routed to the null device by exec when left nil (spec.md §6)

	if err := cmd.Start(); err != nil {
		hostFile.Close()
		return nil, &sasserr.LifecycleError{Message: fmt.Sprintf("spawn %s", path), Cause: err}
	}

	conn, err := net.FileConn(hostFile)
	if err != nil {
		_ = cmd.Process.Kill()
		hostFile.Close()
		return nil, &sasserr.LifecycleError{Message: "wrap subprocess channel", Cause: err}
	}
	hostFile.Close() // conn holds its own duplicate of the fd

	return &Channel{cmd: cmd, conn: conn, r: bufio.NewReader(conn)}, nil
}

// Pid returns the child's OS process id (SPEC_FULL.md §4, process_id
// accessor).
func (c *Channel) Pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Send length-prefixes payload with an unsigned little-endian 32-bit
// byte count and writes prefix+payload in a single call so the two
// never appear as separate frames on the wire (spec.md §4.1).
func (c *Channel) Send(payload []byte) error {
	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)
	if _, err := c.conn.Write(frame); err != nil {
		return &sasserr.ProtocolError{Message: "write to subprocess", Cause: err}
	}
	return nil
}

// Receive blocks up to timeout (<=0 means infinite) for one full framed
// message and returns its payload. A deadline expiry or any I/O failure
// is a ProtocolError (spec.md §4.1, §7).
func (c *Channel) Receive(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		c.conn.SetReadDeadline(time.Time{})
	}

	var prefix [4]byte
	if _, err := io.ReadFull(c.r, prefix[:]); err != nil {
		return nil, receiveError(err)
	}
	n := binary.LittleEndian.Uint32(prefix[:])
	if n > maxFrameBytes {
		return nil, &sasserr.ProtocolError{Message: fmt.Sprintf("frame length %d exceeds maximum", n)}
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return nil, receiveError(err)
	}
	return payload, nil
}

func receiveError(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return &sasserr.ProtocolError{Message: "receive timed out", Cause: err}
	}
	return &sasserr.ProtocolError{Message: "read from subprocess", Cause: err}
}

// Terminate sends the child a kill signal and closes the channel.
// Idempotent; does not wait for the child to exit (spec.md §4.1).
func (c *Channel) Terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return
	}
	c.terminated = true
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	_ = c.conn.Close()
}
