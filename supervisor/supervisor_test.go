// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package supervisor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"

	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/sasserr"
	"github.com/sass-embedded/host-go/value"
	"github.com/sass-embedded/host-go/wire"
)

// fakeChannel stands in for transport.Channel so these tests drive the
// state machine without a real compiler subprocess. replies is a fixed
// queue of raw frames, handed back one per Receive call in order; sent
// records every outbound payload for later inspection.
type fakeChannel struct {
	sent    [][]byte
	replies [][]byte // flattened queue of frames to hand back, in order
	pid     int

	terminated   bool
	terminations int
}

func (f *fakeChannel) Send(payload []byte) error {
	f.sent = append(f.sent, append([]byte(nil), payload...))
	return nil
}

func (f *fakeChannel) Receive(time.Duration) ([]byte, error) {
	if len(f.replies) == 0 {
		return nil, &sasserr.ProtocolError{Message: "fakeChannel: no more scripted replies"}
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	return next, nil
}

func (f *fakeChannel) Terminate() {
	f.terminated = true
	f.terminations++
}

func (f *fakeChannel) Pid() int { return f.pid }

func newTestSupervisor(t *testing.T, ch *fakeChannel) *Supervisor {
	t.Helper()
	spawnCount := 0
	s, err := newSupervisor(func() (channel, error) {
		spawnCount++
		if spawnCount == 1 {
			return ch, nil
		}
		return &fakeChannel{pid: ch.pid + 1}, nil
	}, -1, nil, nil)
	if err != nil {
		t.Fatalf("newSupervisor: %v", err)
	}
	return s
}

// S1 Successful inline compile.
func TestCompileSuccess(t *testing.T) {
	ch := &fakeChannel{pid: 111}
	s := newTestSupervisor(t, ch)

	ch.replies = [][]byte{
		wire.EncodeCompileResponse(&wire.CompileResponse{
			CompilationID: 1001,
			Success:       &wire.CompileSuccess{CSS: "a {\n  b: c;\n}"},
		}),
	}

	results, err := s.Compile(CompileOptions{
		Input: Input{Text: "a { b: c }", Syntax: SyntaxSCSS},
		Style: StyleExpanded,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.HasPrefix(results.CSS, "a {") || !strings.Contains(results.CSS, "b: c;") {
		t.Errorf("unexpected css: %q", results.CSS)
	}
	if len(results.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %# v", pretty.Formatter(results.Diagnostics))
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want idle", s.State())
	}

	sent, err := wire.DecodeOutbound(ch.sent[0])
	if err != nil {
		t.Fatalf("decode sent request: %v", err)
	}
	if sent.CompileRequest.CompilationID != 1001 {
		t.Errorf("first compilation id = %d, want 1001", sent.CompileRequest.CompilationID)
	}
}

// S3 Warning accumulation: diagnostics arrive in order before the
// terminal response.
func TestCompileAccumulatesDiagnosticsInOrder(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)

	ch.replies = [][]byte{
		wire.EncodeLogEvent(&wire.LogEvent{CompilationID: 1001, Kind: diagnostic.KindWarning, Message: "First warning"}),
		wire.EncodeLogEvent(&wire.LogEvent{CompilationID: 1001, Kind: diagnostic.KindWarning, Message: "Second warning"}),
		wire.EncodeLogEvent(&wire.LogEvent{CompilationID: 1001, Kind: diagnostic.KindDebug, Message: "Third debug"}),
		wire.EncodeCompileResponse(&wire.CompileResponse{CompilationID: 1001, Success: &wire.CompileSuccess{CSS: ""}}),
	}

	results, err := s.Compile(CompileOptions{Input: Input{Text: "x", Syntax: SyntaxSCSS}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []diagnostic.Kind{diagnostic.KindWarning, diagnostic.KindWarning, diagnostic.KindDebug}
	if len(results.Diagnostics) != 3 {
		t.Fatalf("len(Diagnostics) = %d, want 3", len(results.Diagnostics))
	}
	for i, k := range want {
		if results.Diagnostics[i].Kind != k {
			t.Errorf("Diagnostics[%d].Kind = %v, want %v", i, results.Diagnostics[i].Kind, k)
		}
	}
}

// S2-shaped: a compile failure is a CompilerError, not a restart.
func TestCompileFailureReturnsCompilerErrorWithoutRestart(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)

	ch.replies = [][]byte{
		wire.EncodeCompileResponse(&wire.CompileResponse{
			CompilationID: 1001,
			Failure:       &wire.CompileFailure{Message: `"Property top must be either left or right."`},
		}),
	}

	_, err := s.Compile(CompileOptions{Input: Input{Text: "x", Syntax: SyntaxIndented}})
	var compErr *sasserr.CompilerError
	if !errors.As(err, &compErr) {
		t.Fatalf("err = %v, want *sasserr.CompilerError", err)
	}
	if ch.terminated {
		t.Errorf("CompilerError should not terminate the subprocess")
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want idle", s.State())
	}
}

// S6 Restart: a protocol violation triggers restart; a following compile
// succeeds on the fresh subprocess.
func TestRestartAfterProtocolError(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)

	ch.replies = [][]byte{{0xFF, 0, 0, 0}} // unknown tag byte

	_, err := s.Compile(CompileOptions{Input: Input{Text: "x", Syntax: SyntaxSCSS}})
	var protoErr *sasserr.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("err = %v, want *sasserr.ProtocolError", err)
	}
	if !ch.terminated {
		t.Errorf("expected the broken subprocess to be terminated")
	}
	if s.State() != Idle {
		t.Fatalf("state = %v, want idle (restart should have succeeded)", s.State())
	}

	newCh := s.ch.(*fakeChannel)
	newCh.replies = [][]byte{
		wire.EncodeCompileResponse(&wire.CompileResponse{CompilationID: 1002, Success: &wire.CompileSuccess{CSS: "ok"}}),
	}
	results, err := s.Compile(CompileOptions{Input: Input{Text: "x", Syntax: SyntaxSCSS}})
	if err != nil {
		t.Fatalf("second Compile after restart: %v", err)
	}
	if results.CSS != "ok" {
		t.Fatalf("CSS = %q, want %q", results.CSS, "ok")
	}
}

// Property: concurrent compiles on one Supervisor — one succeeds, the
// other fails with a precondition violation, never both proceeding.
func TestConcurrentCompileRejected(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)

	s.mu.Lock()
	s.state = Active // simulate a compile already in flight
	s.mu.Unlock()

	_, err := s.Compile(CompileOptions{Input: Input{Text: "x"}})
	var precond *sasserr.Precondition
	if !errors.As(err, &precond) {
		t.Fatalf("err = %v, want *sasserr.Precondition", err)
	}
}

func TestCompileRejectedWhenBroken(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)
	s.mu.Lock()
	s.state = Broken
	s.mu.Unlock()

	_, err := s.Compile(CompileOptions{Input: Input{Text: "x"}})
	var lifeErr *sasserr.LifecycleError
	if !errors.As(err, &lifeErr) {
		t.Fatalf("err = %v, want *sasserr.LifecycleError", err)
	}
}

func TestFunctionCallDispatchByName(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)

	called := false
	ch.replies = [][]byte{
		wire.EncodeFunctionCallRequest(&wire.FunctionCallRequest{
			ID: 1, CompilationID: 1001, HasName: true, Name: "double",
			Arguments: []value.Value{value.NewUnitlessNumber(21)},
		}),
		wire.EncodeCompileResponse(&wire.CompileResponse{CompilationID: 1001, Success: &wire.CompileSuccess{CSS: ""}}),
	}

	_, err := s.Compile(CompileOptions{
		Input: Input{Text: "x"},
		Functions: map[string]value.Callable{
			"double($n)": func(args []value.Value) (value.Value, error) {
				called = true
				n, _ := value.Downcast[value.Number](args[0])
				return value.NewUnitlessNumber(n.Value() * 2), nil
			},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !called {
		t.Fatal("expected the registered function to be called")
	}

	reply, err := wire.DecodeOutbound(ch.sent[1])
	if err != nil {
		t.Fatalf("decode function call response: %v", err)
	}
	n, ok := value.Downcast[value.Number](reply.FunctionCallResponse.Result)
	if !ok || n.Value() != 42 {
		t.Fatalf("result = %v, want 42", reply.FunctionCallResponse.Result)
	}
}

func TestCanonicalizeRequestAgainstLoadPathIsProtocolError(t *testing.T) {
	ch := &fakeChannel{pid: 1}
	s := newTestSupervisor(t, ch)

	ch.replies = [][]byte{
		wire.EncodeCanonicalizeRequest(&wire.CanonicalizeRequest{ID: 1, CompilationID: 1001, ImporterID: 4000, URL: "foo"}),
	}

	_, err := s.Compile(CompileOptions{
		Input:     Input{Text: "x"},
		Importers: []ImportResolver{NewLoadPathImporter("/tmp")},
	})
	var protoErr *sasserr.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("err = %v, want *sasserr.ProtocolError", err)
	}
}

