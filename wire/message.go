// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package wire

import (
	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/value"
)

// Style is the compiled CSS output style (spec.md §6).
type Style byte

const (
	StyleExpanded Style = iota
	StyleNested
	StyleCompact
	StyleCompressed
)

// Syntax is the input (or imported file) syntax (spec.md §6).
type Syntax byte

const (
	SyntaxSCSS Syntax = iota
	SyntaxIndented
	SyntaxCSS
)

// CompileInput carries either inline source (Text/Syntax/URL) or an
// absolute file path, per spec.md §4.4 step 4.
type CompileInput struct {
	IsPath bool
	Path   string

	Text   string
	Syntax Syntax
	URL    string
}

// ImporterKind distinguishes the three ImportResolver forms spec.md §3
// and SPEC_FULL.md §4 describe.
type ImporterKind byte

const (
	ImporterLoadPath ImporterKind = iota
	ImporterCustom
	ImporterFile
)

// ImporterDescriptor is one entry of the per-compile importer list sent
// up-front in the CompileRequest (spec.md §4.4 step 3).
type ImporterDescriptor struct {
	ID       uint32
	Kind     ImporterKind
	LoadPath string // only meaningful when Kind == ImporterLoadPath
}

// CompileRequest is the sole inbound-to-compiler wrapper this host sends
// (spec.md §4.4 step 4, §6).
type CompileRequest struct {
	CompilationID           uint32
	Input                   CompileInput
	Style                   Style
	SourceMap               bool
	SourceMapIncludeSources bool
	Importers               []ImporterDescriptor
	FunctionSignatures      []string
	AlertColor              bool
	AlertASCII              bool
}

// CompileResponse is the terminal message of a compile (spec.md §4.4).
// Exactly one of Success or Failure is non-nil; neither being set is
// itself a protocol error the driver detects on receipt.
type CompileResponse struct {
	CompilationID uint32
	Success       *CompileSuccess
	Failure       *CompileFailure
}

type CompileSuccess struct {
	CSS          string
	SourceMap    string
	HasSourceMap bool
}

type CompileFailure struct {
	Message    string
	Span       *diagnostic.Span
	StackTrace string
}

// LogEvent reports one warning/deprecation/debug diagnostic during a
// compile (spec.md §4.4).
type LogEvent struct {
	CompilationID uint32
	Kind          diagnostic.Kind
	Message       string
	Span          *diagnostic.Span
	StackTrace    string
}

// ProtocolErrorMessage is sent by the compiler itself when it detects a
// protocol violation on its end (spec.md §4.4).
type ProtocolErrorMessage struct {
	HasCompilationID bool
	CompilationID    uint32
	Message          string
}

// CanonicalizeRequest/Response implement the importer canonicalize
// round-trip (spec.md §4.4, §4.6).
type CanonicalizeRequest struct {
	ID            uint32
	CompilationID uint32
	ImporterID    uint32
	URL           string
	FromImport    bool
}

type CanonicalizeResponse struct {
	ID            uint32
	CompilationID uint32
	HasURL        bool
	URL           string
	Error         string
}

// ImportRequest/Response implement the importer load round-trip
// (spec.md §4.4, §4.6).
type ImportRequest struct {
	ID            uint32
	CompilationID uint32
	ImporterID    uint32
	URL           string
}

type ImportResponse struct {
	ID              uint32
	CompilationID   uint32
	Contents        string
	Syntax          Syntax
	HasSourceMapURL bool
	SourceMapURL    string
	Error           string
}

// FunctionCallRequest/Response implement host function dispatch
// (spec.md §4.4, §4.6). Exactly one of Name/FunctionID identifies the
// function being called.
type FunctionCallRequest struct {
	ID            uint32
	CompilationID uint32
	HasName       bool
	Name          string
	HasFunctionID bool
	FunctionID    uint32
	Arguments     []value.Value
}

type FunctionCallResponse struct {
	ID            uint32
	CompilationID uint32
	Result        value.Value
	Error         string
}
