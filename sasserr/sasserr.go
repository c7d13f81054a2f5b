// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package sasserr defines the closed failure taxonomy spec.md §7
// assigns to this host: CompilerError, ProtocolError, LifecycleError, and
// ValueError, each a concrete type implementing error so callers can
// errors.As them instead of matching on sentinel values. Modeled on the
// teacher's kvm/err package: every error carries both a machine-oriented
// Kind and a human-oriented String/Error.
package sasserr

import (
	"fmt"

	"github.com/sass-embedded/host-go/diagnostic"
)

// Kind categorizes which of the four failure types an Error is, so
// driver code can branch without a type switch.
type Kind byte

const (
	KindCompiler Kind = iota
	KindProtocol
	KindLifecycle
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindCompiler:
		return "compiler error"
	case KindProtocol:
		return "protocol error"
	case KindLifecycle:
		return "lifecycle error"
	case KindValue:
		return "value error"
	}
	return "unknown error"
}

// Error is implemented by every error this package defines.
type Error interface {
	error
	String() string
	Kind() Kind
}

// CompilerError reports that the external compiler itself failed a
// compilation. It is an expected, non-fatal-to-the-Supervisor outcome
// (spec.md §7).
type CompilerError struct {
	Message     string
	Span        *diagnostic.Span
	StackTrace  string
	Diagnostics []diagnostic.Message
}

func (e *CompilerError) Kind() Kind { return KindCompiler }

func (e *CompilerError) Error() string { return e.String() }

// String renders the pretty form spec.md §4.5 describes: the catalogue
// of diagnostics accumulated before the failure, then the error itself.
func (e *CompilerError) String() string {
	return diagnostic.FormatError(e.Diagnostics, e.Message, e.Span, e.StackTrace, diagnostic.DefaultOptions)
}

// ProtocolError reports that the exchange with the compiler subprocess
// violated the wire contract: a malformed message, an unknown enum
// discriminant, a missing field, a compilation-id mismatch, a bad
// importer id, an I/O error, a receive timeout, a malformed import URL,
// or an unrecognized message variant. Always triggers a restart attempt
// (spec.md §4.4, §7).
type ProtocolError struct {
	Message string
	Cause   error
}

func (e *ProtocolError) Kind() Kind { return KindProtocol }

func (e *ProtocolError) Error() string { return e.String() }

func (e *ProtocolError) String() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol error: %s: %s", e.Message, e.Cause)
	}
	return fmt.Sprintf("protocol error: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// LifecycleError reports that the compiler subprocess could not be
// spawned or restarted, or that a compile was attempted on a Broken
// Supervisor. Non-recoverable for the affected Supervisor instance
// (spec.md §7).
type LifecycleError struct {
	Message string
	Cause   error
}

func (e *LifecycleError) Kind() Kind { return KindLifecycle }

func (e *LifecycleError) Error() string { return e.String() }

func (e *LifecycleError) String() string {
	if e.Cause != nil {
		return fmt.Sprintf("lifecycle error: %s: %s", e.Message, e.Cause)
	}
	return fmt.Sprintf("lifecycle error: %s", e.Message)
}

func (e *LifecycleError) Unwrap() error { return e.Cause }

// ValueError reports that a host callback's return value failed a typed
// downcast. It is surfaced to the compiler as the text of a
// function-call error response, never returned directly from compile
// (spec.md §7).
type ValueError struct {
	Message  string
	Function string
}

func (e *ValueError) Kind() Kind { return KindValue }

func (e *ValueError) Error() string { return e.String() }

func (e *ValueError) String() string {
	if e.Function != "" {
		return fmt.Sprintf("value error in %s: %s", e.Function, e.Message)
	}
	return fmt.Sprintf("value error: %s", e.Message)
}

// Precondition reports a violation of the Supervisor's state-machine
// preconditions (compile called from a state other than Idle, or
// re-entrant compile). It is its own concrete type rather than a
// LifecycleError because, unlike a broken subprocess, the Supervisor
// remains perfectly usable — the caller simply used it wrong.
type Precondition struct {
	Message string
}

func (e *Precondition) Kind() Kind     { return KindLifecycle }
func (e *Precondition) Error() string  { return e.String() }
func (e *Precondition) String() string { return fmt.Sprintf("precondition violation: %s", e.Message) }
