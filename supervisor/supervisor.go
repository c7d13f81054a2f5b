// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package supervisor implements the Supervisor / Protocol Driver
// (spec.md §4.4): the compile state machine, the callback dispatch loop,
// identifier spaces for the current compilation, restart logic, and the
// public compile contract. It is the largest package in this module,
// the direct analogue of the teacher's kvm.VirtualMachine — the object
// that owns one execution context and drives it to completion.
package supervisor

import (
	"log"
	"net/url"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/registry"
	"github.com/sass-embedded/host-go/sasserr"
	"github.com/sass-embedded/host-go/trace"
	"github.com/sass-embedded/host-go/transport"
	"github.com/sass-embedded/host-go/value"
	"github.com/sass-embedded/host-go/wire"
)

// firstCompilationIDSeed is the counter's initial value; the first
// allocated id is 1001 (spec.md GLOSSARY).
const firstCompilationIDSeed = 1000

// channel is the subset of transport.Channel the driver depends on,
// kept as an interface so tests can drive the state machine against a
// fake compiler without spawning a real subprocess.
type channel interface {
	Send([]byte) error
	Receive(timeout time.Duration) ([]byte, error)
	Terminate()
	Pid() int
}

// Logger is the package-level logger, in the teacher's style of a
// prefixed *log.Logger rather than scattered log.Fatal calls. Replace it
// (or a Supervisor's own logger field, via SetLogger) to redirect
// restart/failure diagnostics.
var Logger = log.New(os.Stderr, "[sass/supervisor] ", log.LstdFlags)

// Supervisor owns one compiler subprocess end to end: spawn, the
// request/response loop for each compile, and the restart-or-break
// decision when the channel is corrupted (spec.md §4.4).
type Supervisor struct {
	mu    sync.Mutex
	state State
	ch    channel

	spawn func() (channel, error)

	timeoutSeconds int // <=0 disables the overall-compile timeout

	globalImporters []ImportResolver
	globalFunctions map[string]value.Callable

	nextCompilationID uint32

	version *CompilerVersion
	sink    *trace.Sink
	logger  *log.Logger
}

// New spawns path as the compiler subprocess and returns a Supervisor in
// state Idle, or a LifecycleError if the spawn fails (spec.md §4.4, §6).
func New(execPath string, timeoutSeconds int, importers []ImportResolver, functions map[string]value.Callable) (*Supervisor, error) {
	return newSupervisor(
		func() (channel, error) { return transport.Spawn(execPath, nil, "") },
		timeoutSeconds, importers, functions,
	)
}

// NewFromName resolves name against the platform PATH (the
// `which`-equivalent spec.md §6 describes) and then behaves as New.
func NewFromName(name string, timeoutSeconds int, importers []ImportResolver, functions map[string]value.Callable) (*Supervisor, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, lifecycleErrorf(err, "resolve %q on PATH", name)
	}
	return New(path, timeoutSeconds, importers, functions)
}

func newSupervisor(spawn func() (channel, error), timeoutSeconds int, importers []ImportResolver, functions map[string]value.Callable) (*Supervisor, error) {
	s := &Supervisor{
		spawn:             spawn,
		timeoutSeconds:    timeoutSeconds,
		globalImporters:   append([]ImportResolver(nil), importers...),
		globalFunctions:   copyFunctions(functions),
		nextCompilationID: firstCompilationIDSeed,
		logger:            Logger,
	}
	ch, err := spawn()
	if err != nil {
		return nil, lifecycleErrorf(err, "spawn compiler subprocess")
	}
	s.ch = ch
	s.state = Idle
	return s, nil
}

func copyFunctions(m map[string]value.Callable) map[string]value.Callable {
	out := make(map[string]value.Callable, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SetLogger replaces this Supervisor's logger, overriding the package
// default.
func (s *Supervisor) SetLogger(l *log.Logger) { s.logger = l }

// SetDebugSink attaches the optional debug_sink hook spec.md §6 names.
// Nothing in the state machine depends on one being present
// (SPEC_FULL.md §3).
func (s *Supervisor) SetDebugSink(sink *trace.Sink) { s.sink = sink }

// ProcessID returns the current subprocess's OS pid (spec.md §6).
func (s *Supervisor) ProcessID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return 0
	}
	return s.ch.Pid()
}

// Version returns the recorded compiler version (SPEC_FULL.md §4). No
// version probe is sent and nothing records a version, so it returns nil.
func (s *Supervisor) Version() *CompilerVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// State reports the Supervisor's current lifecycle state. Exposed for
// tests and diagnostics; callers should not branch on it between a
// State() call and a Compile() call since another goroutine could change
// it first — Compile's own precondition check is authoritative.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reinit terminates the current subprocess and spawns a fresh one. Only
// valid from Idle or Broken (spec.md §4.4); on spawn failure the
// Supervisor moves to Broken and Reinit reports a LifecycleError.
func (s *Supervisor) Reinit() error {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	if st != Idle && st != Broken {
		return &sasserr.Precondition{Message: "reinit is only valid from idle or broken"}
	}
	return s.restart()
}

// restart implements the unconditional terminate-then-respawn step used
// by both Reinit and the compile failure path (spec.md §4.4, §7).
func (s *Supervisor) restart() error {
	s.mu.Lock()
	old := s.ch
	s.mu.Unlock()
	if old != nil {
		old.Terminate()
	}

	ch, err := s.spawn()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.ch = nil
		s.state = Broken
		return lifecycleErrorf(err, "restart compiler subprocess")
	}
	s.ch = ch
	s.state = Idle
	return nil
}

// acquire validates and performs the Idle->Active transition atomically,
// so two concurrent Compile calls can never both proceed (spec.md §8
// property 5).
func (s *Supervisor) acquire() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Broken:
		return 0, &sasserr.LifecycleError{Message: "supervisor is broken; construct a new one"}
	case Idle:
		s.nextCompilationID++
		s.state = Active
		return s.nextCompilationID, nil
	default:
		return 0, &sasserr.Precondition{Message: "compile already in progress on this supervisor"}
	}
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Compile runs one compilation to completion: send the request, then
// loop on inbound messages dispatching log events and callbacks until a
// terminal CompileResponse arrives (spec.md §4.4).
func (s *Supervisor) Compile(opts CompileOptions) (*Results, error) {
	compilationID, err := s.acquire()
	if err != nil {
		return nil, err
	}

	job := &compileJob{id: compilationID}
	job.resolvers = append(append([]ImportResolver(nil), s.globalImporters...), opts.Importers...)
	signatures, byName := buildFunctionTable(s.globalFunctions, opts.Functions)
	job.functionsByName = byName

	req := &wire.CompileRequest{
		CompilationID:           compilationID,
		Input:                   buildCompileInput(opts.Input),
		Style:                   opts.Style,
		SourceMap:                opts.SourceMap,
		SourceMapIncludeSources: opts.SourceMapIncludeSources,
		Importers:               job.descriptors(),
		FunctionSignatures:      signatures,
		AlertColor:              opts.AlertColor,
		AlertASCII:              opts.AlertASCII,
	}

	payload := wire.EncodeCompileRequest(req)
	if s.sink != nil {
		s.sink.Record(compilationID, trace.Outbound, payload)
	}
	if err := s.ch.Send(payload); err != nil {
		return s.fail(err)
	}

	return s.receiveLoop(job)
}

func buildCompileInput(in Input) wire.CompileInput {
	if in.FilePath != "" {
		return wire.CompileInput{IsPath: true, Path: in.FilePath}
	}
	return wire.CompileInput{Text: in.Text, Syntax: in.Syntax, URL: in.URL}
}

// receiveLoop is the heart of spec.md §4.4: read one message at a time,
// verify its compilation id, and dispatch.
func (s *Supervisor) receiveLoop(job *compileJob) (*Results, error) {
	start := time.Now()
	for {
		raw, err := s.ch.Receive(s.remainingTimeout(start))
		if err != nil {
			return s.fail(err)
		}
		if s.sink != nil {
			s.sink.Record(job.id, trace.Inbound, raw)
		}

		inbound, err := wire.DecodeInbound(raw)
		if err != nil {
			return s.fail(err)
		}
		if cid, ok := inboundCompilationID(inbound); ok && cid != job.id {
			return s.fail(protocolErrorf("compilation id mismatch: message carries %d, expected %d", cid, job.id))
		}

		switch {
		case inbound.CompileResponse != nil:
			results, err, done := s.handleCompileResponse(job, inbound.CompileResponse)
			if done {
				return results, err
			}
			return s.fail(err)

		case inbound.LogEvent != nil:
			m := inbound.LogEvent
			job.diagnostics = append(job.diagnostics, diagnostic.Message{
				Kind: m.Kind, Text: m.Message, Span: m.Span, StackTrace: m.StackTrace,
			})

		case inbound.ProtocolError != nil:
			return s.fail(protocolErrorf("compiler reported a protocol error: %s", inbound.ProtocolError.Message))

		case inbound.CanonicalizeRequest != nil:
			if err := s.handleCanonicalize(job, inbound.CanonicalizeRequest); err != nil {
				return s.fail(err)
			}

		case inbound.ImportRequest != nil:
			if err := s.handleImport(job, inbound.ImportRequest); err != nil {
				return s.fail(err)
			}

		case inbound.FunctionCallRequest != nil:
			if err := s.handleFunctionCall(job, inbound.FunctionCallRequest); err != nil {
				return s.fail(err)
			}

		default:
			return s.fail(protocolErrorf("message carried no recognized variant"))
		}
	}
}

// handleCompileResponse reports done=true when the response is a
// well-formed terminal message (success or failure), regardless of
// which; done=false signals an absent-result protocol violation that
// the caller must still route through the restart path.
func (s *Supervisor) handleCompileResponse(job *compileJob, m *wire.CompileResponse) (*Results, error, bool) {
	switch {
	case m.Success != nil:
		s.setState(Idle)
		return &Results{
			CSS:          m.Success.CSS,
			SourceMap:    m.Success.SourceMap,
			HasSourceMap: m.Success.HasSourceMap,
			Diagnostics:  job.diagnostics,
		}, nil, true

	case m.Failure != nil:
		s.setState(Idle)
		return nil, &sasserr.CompilerError{
			Message:     m.Failure.Message,
			Span:        m.Failure.Span,
			StackTrace:  m.Failure.StackTrace,
			Diagnostics: job.diagnostics,
		}, true

	default:
		return nil, protocolErrorf("compile response for %d carries neither success nor failure", job.id), false
	}
}

// remainingTimeout implements spec.md §4.4's per-receive budget: "max(1,
// overall_timeout - elapsed)" seconds once a timeout is set, or 0
// (infinite) if disabled.
func (s *Supervisor) remainingTimeout(start time.Time) time.Duration {
	if s.timeoutSeconds <= 0 {
		return 0
	}
	remaining := float64(s.timeoutSeconds) - time.Since(start).Seconds()
	if remaining < 1 {
		remaining = 1
	}
	return time.Duration(remaining * float64(time.Second))
}

// fail implements spec.md §4.4's failure handling for anything other
// than a CompilerError (which handleCompileResponse already returns
// directly without going through fail): terminate the child, try to
// respawn, then rethrow the original error regardless of outcome.
func (s *Supervisor) fail(err error) (*Results, error) {
	if restartErr := s.restart(); restartErr != nil {
		s.logger.Printf("restart failed after %v: %v", err, restartErr)
	}
	return nil, err
}

func (s *Supervisor) sendResponse(compilationID uint32, payload []byte) error {
	if s.sink != nil {
		s.sink.Record(compilationID, trace.Outbound, payload)
	}
	return s.ch.Send(payload)
}

// handleCanonicalize answers a CanonicalizeRequest by running the
// resolved importer's Canonicalize callback, entering ActiveInCallback
// for the duration of the call (spec.md §4.4, §4.6).
func (s *Supervisor) handleCanonicalize(job *compileJob, req *wire.CanonicalizeRequest) error {
	resolver, err := job.importerFor(req.ImporterID)
	if err != nil {
		return err
	}

	resp := &wire.CanonicalizeResponse{ID: req.ID, CompilationID: job.id}
	switch {
	case resolver.Importer != nil:
		s.setState(ActiveInCallback)
		url, ok, cerr := resolver.Importer.Canonicalize(req.URL, req.FromImport)
		s.setState(Active)
		fillCanonicalizeResult(resp, url, ok, cerr)

	case resolver.FileImporter != nil:
		s.setState(ActiveInCallback)
		url, ok, cerr := resolver.FileImporter.Canonicalize(req.URL, req.FromImport)
		s.setState(Active)
		fillCanonicalizeResult(resp, url, ok, cerr)

	default:
		return protocolErrorf("canonicalize request for load-path importer %d", req.ImporterID)
	}

	return s.sendResponse(job.id, wire.EncodeCanonicalizeResponse(resp))
}

func fillCanonicalizeResult(resp *wire.CanonicalizeResponse, url string, ok bool, err error) {
	if err != nil {
		resp.Error = err.Error()
		return
	}
	if ok {
		resp.HasURL = true
		resp.URL = url
	}
}

// handleImport answers an ImportRequest by running the resolved custom
// importer's Load callback (spec.md §4.4, §4.6).
func (s *Supervisor) handleImport(job *compileJob, req *wire.ImportRequest) error {
	resolver, err := job.importerFor(req.ImporterID)
	if err != nil {
		return err
	}
	if resolver.Importer == nil {
		return protocolErrorf("import request for a non-custom importer slot %d", req.ImporterID)
	}
	// url.ParseRequestURI (not url.Parse) so a relative or empty URL is
	// rejected here instead of silently reaching the importer.
	if _, perr := url.ParseRequestURI(req.URL); perr != nil {
		return protocolErrorf("malformed import url %q: %v", req.URL, perr)
	}

	resp := &wire.ImportResponse{ID: req.ID, CompilationID: job.id}
	s.setState(ActiveInCallback)
	contents, syntax, mapURL, hasMapURL, lerr := resolver.Importer.Load(req.URL)
	s.setState(Active)
	if lerr != nil {
		resp.Error = lerr.Error()
	} else {
		resp.Contents = contents
		resp.Syntax = syntax
		resp.HasSourceMapURL = hasMapURL
		resp.SourceMapURL = mapURL
	}

	return s.sendResponse(job.id, wire.EncodeImportResponse(resp))
}

// handleFunctionCall answers a FunctionCallRequest, dispatching by id
// through the process-wide registry or by name through the current
// compilation's function table (spec.md §4.4, §4.6).
func (s *Supervisor) handleFunctionCall(job *compileJob, req *wire.FunctionCallRequest) error {
	var fn value.Callable
	switch {
	case req.HasFunctionID:
		dyn, ok := registry.Lookup(req.FunctionID)
		if !ok {
			return protocolErrorf("unknown dynamic function id %d", req.FunctionID)
		}
		fn = dyn.Callable

	case req.HasName:
		f, ok := job.functionsByName[req.Name]
		if !ok {
			return protocolErrorf("unknown function %q", req.Name)
		}
		fn = f

	default:
		return protocolErrorf("function call request carries neither a name nor a function id")
	}

	resp := &wire.FunctionCallResponse{ID: req.ID, CompilationID: job.id}
	s.setState(ActiveInCallback)
	result, cerr := fn(req.Arguments)
	s.setState(Active)
	if cerr != nil {
		resp.Error = cerr.Error()
	} else {
		resp.Result = result
	}

	return s.sendResponse(job.id, wire.EncodeFunctionCallResponse(resp))
}

// inboundCompilationID extracts the compilation id carried by whichever
// field of in is set, if any (spec.md §4.4: "If the message carries a
// compilation id, verify it equals the current one").
func inboundCompilationID(in wire.Inbound) (uint32, bool) {
	switch {
	case in.CompileResponse != nil:
		return in.CompileResponse.CompilationID, true
	case in.LogEvent != nil:
		return in.LogEvent.CompilationID, true
	case in.CanonicalizeRequest != nil:
		return in.CanonicalizeRequest.CompilationID, true
	case in.ImportRequest != nil:
		return in.ImportRequest.CompilationID, true
	case in.FunctionCallRequest != nil:
		return in.FunctionCallRequest.CompilationID, true
	case in.ProtocolError != nil && in.ProtocolError.HasCompilationID:
		return in.ProtocolError.CompilationID, true
	}
	return 0, false
}
