// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package sass

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/sass-embedded/host-go/sasserr"
)

// catPath stands in for a compiler binary that exists but does not speak
// the protocol, the same way transport's tests use cat to exercise
// framing without a real Sass compiler.
func catPath(t *testing.T) string {
	p, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available on PATH")
	}
	return p
}

func TestNewFromNameUnresolvedIsLifecycleError(t *testing.T) {
	_, err := NewFromName("sass-host-go-definitely-not-a-real-binary", 0, nil, nil)
	var lerr *sasserr.LifecycleError
	if !errors.As(err, &lerr) {
		t.Fatalf("got %v (%T), want a LifecycleError", err, err)
	}
}

func TestCompileTextAgainstNonProtocolSubprocessIsProtocolError(t *testing.T) {
	h, err := New(catPath(t), 0, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = h.CompileText("a { color: red; }", TextOptions{Syntax: SyntaxSCSS, Style: StyleExpanded})
	var perr *sasserr.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v (%T), want a ProtocolError", err, err)
	}
}

func TestProcessIDReflectsSpawnedSubprocess(t *testing.T) {
	h, err := New(catPath(t), 0, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.ProcessID() <= 0 {
		t.Fatalf("ProcessID = %d, want a positive pid", h.ProcessID())
	}
}
