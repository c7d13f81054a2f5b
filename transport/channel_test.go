// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package transport

import (
	"os/exec"
	"testing"
	"time"
)

// catPath returns the cat binary used as a stand-in subprocess: since it
// echoes stdin to stdout byte-for-byte, a frame sent to it is the frame
// Receive reads back, exercising framing without a real Sass compiler.
func catPath(t *testing.T) string {
	p, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available on PATH")
	}
	return p
}

func TestSendReceiveRoundTrip(t *testing.T) {
	ch, err := Spawn(catPath(t), nil, "")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer ch.Terminate()

	if err := ch.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := ch.Receive(5 * time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Receive = %q, want %q", got, "hello")
	}
}

func TestReceiveTimeout(t *testing.T) {
	ch, err := Spawn(catPath(t), nil, "")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer ch.Terminate()

	_, err = ch.Receive(50 * time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
}

func TestTerminateIdempotent(t *testing.T) {
	ch, err := Spawn(catPath(t), nil, "")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	ch.Terminate()
	ch.Terminate() // must not panic
}

func TestPid(t *testing.T) {
	ch, err := Spawn(catPath(t), nil, "")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer ch.Terminate()
	if ch.Pid() <= 0 {
		t.Fatalf("Pid() = %d, want > 0", ch.Pid())
	}
}
